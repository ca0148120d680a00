package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/mtavis/go-bvh/pkg/bvh"
	"github.com/mtavis/go-bvh/pkg/bvhio"
)

// parseVec3 parses "x,y,z" into a vector
func parseVec3(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		v[i] = f
	}
	return v, nil
}

// QueryTree shoots a ray through a persisted tree. The boxes the tree was
// built over double as the primitives: the per-primitive test is the slab
// test against each box.
func QueryTree(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	args := ctx.Args()
	if len(args) < 2 {
		return fmt.Errorf("query: expected tree file and box file")
	}

	tree, err := bvhio.ReadTreeFile(args[0])
	if err != nil {
		return err
	}
	boxes, err := bvhio.ReadBoxesFile(args[1])
	if err != nil {
		return err
	}
	if len(boxes) != tree.Len() {
		return fmt.Errorf("query: tree was built over %d primitives, box file has %d", tree.Len(), len(boxes))
	}

	origin, err := parseVec3(ctx.String("origin"))
	if err != nil {
		return err
	}
	direction, err := parseVec3(ctx.String("dir"))
	if err != nil {
		return err
	}

	ray := bvh.NewRay(origin, direction)
	isect := bvh.BoxIntersector(boxes)

	if ctx.Bool("any") {
		occluded := tree.AnyHit(ray, 0, math.Inf(1), isect)
		fmt.Printf("any hit: %v\n", occluded)
		return nil
	}

	hit, ok := tree.ClosestHit(ray, 0, math.Inf(1), isect)
	if !ok {
		fmt.Println("no hit")
		return nil
	}
	logger.Debug("closest hit", zap.Int("prim", hit.Prim), zap.Float64("t", hit.T))
	fmt.Printf("hit primitive %d at t=%g, point %v\n", hit.Prim, hit.T, ray.At(hit.T))
	return nil
}
