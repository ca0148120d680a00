package bvh

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Default construction parameters. Optimal values are scene-dependent,
// which is why they live in Options instead of constants at the use sites.
const (
	DefaultBins              = 16
	DefaultMinLeafSize       = 4
	DefaultTraversalCost     = 1.0
	DefaultIntersectCost     = 1.0
	DefaultParallelThreshold = 4096
)

// Options controls BVH construction.
// Fields with toml tags can be loaded from a config file.
type Options struct {
	// Number of SAH bins per axis when evaluating split candidates
	Bins int `toml:"bins"`

	// Ranges with at most this many primitives always become leaves
	MinLeafSize int `toml:"min-leaf-size"`

	// Estimated cost of one traversal step relative to IntersectCost
	TraversalCost float64 `toml:"traversal-cost"`

	// Estimated cost of one primitive intersection test
	IntersectCost float64 `toml:"intersect-cost"`

	// Subtrees with more primitives than this are built on their own
	// goroutine. Negative disables parallel construction; zero selects
	// the default threshold.
	ParallelThreshold int `toml:"parallel-threshold"`

	// Logger receives construction statistics at debug level.
	// Defaults to a no-op logger.
	Logger *zap.Logger `toml:"-"`
}

// DefaultOptions returns the documented default construction parameters
func DefaultOptions() Options {
	return Options{
		Bins:              DefaultBins,
		MinLeafSize:       DefaultMinLeafSize,
		TraversalCost:     DefaultTraversalCost,
		IntersectCost:     DefaultIntersectCost,
		ParallelThreshold: DefaultParallelThreshold,
		Logger:            zap.NewNop(),
	}
}

// LoadOptions reads construction options from a TOML file.
// Fields absent from the file keep their defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, fmt.Errorf("bvh: load options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks the options for values the builder cannot work with
func (o Options) Validate() error {
	if o.Bins < 2 {
		return fmt.Errorf("bvh: options: bins must be >= 2, got %d", o.Bins)
	}
	if o.MinLeafSize < 1 {
		return fmt.Errorf("bvh: options: min-leaf-size must be >= 1, got %d", o.MinLeafSize)
	}
	if o.TraversalCost <= 0 || o.IntersectCost <= 0 {
		return fmt.Errorf("bvh: options: costs must be positive, got traversal=%g intersect=%g",
			o.TraversalCost, o.IntersectCost)
	}
	return nil
}

// withDefaults fills zero-valued fields so Build accepts Options{}
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Bins == 0 {
		o.Bins = def.Bins
	}
	if o.MinLeafSize == 0 {
		o.MinLeafSize = def.MinLeafSize
	}
	if o.TraversalCost == 0 {
		o.TraversalCost = def.TraversalCost
	}
	if o.IntersectCost == 0 {
		o.IntersectCost = def.IntersectCost
	}
	if o.ParallelThreshold == 0 {
		o.ParallelThreshold = def.ParallelThreshold
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
