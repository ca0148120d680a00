package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/mtavis/go-bvh/pkg/bvh"
	"github.com/mtavis/go-bvh/pkg/bvhio"
)

// BuildTree reads a box list, builds a tree over it and persists the
// result, so later inspect/query invocations skip reconstruction.
func BuildTree(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	in := ctx.Args().First()
	if in == "" {
		return fmt.Errorf("build: missing input box file")
	}

	opts := bvh.DefaultOptions()
	if cfg := ctx.String("config"); cfg != "" {
		var err error
		opts, err = bvh.LoadOptions(cfg)
		if err != nil {
			return err
		}
	}
	opts.Logger = logger

	boxes, err := bvhio.ReadBoxesFile(in)
	if err != nil {
		return err
	}

	start := time.Now()
	tree, err := bvh.Build(bvh.BoundedBoxes(boxes), opts)
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err := bvhio.WriteTreeFile(out, tree); err != nil {
		return err
	}

	stats := tree.Stats()
	logger.Info("tree written",
		zap.String("file", out),
		zap.Int("primitives", stats.Prims),
		zap.Int("nodes", stats.Nodes),
		zap.Int("leaves", stats.Leaves),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
