package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/mtavis/go-bvh/pkg/bvhio"
)

// InspectTree loads a persisted tree and prints its structural statistics
func InspectTree(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	in := ctx.Args().First()
	if in == "" {
		return fmt.Errorf("inspect: missing tree file")
	}

	tree, err := bvhio.ReadTreeFile(in)
	if err != nil {
		return err
	}
	stats := tree.Stats()
	bounds := tree.Bounds()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Primitives", fmt.Sprintf("%d", stats.Prims)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", stats.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprintf("%d", stats.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", stats.MaxDepth)})
	table.Append([]string{"Avg leaf size", fmt.Sprintf("%.2f", stats.AvgLeafSize)})
	table.Append([]string{"Root area", fmt.Sprintf("%.4g", stats.SurfaceArea)})
	table.Append([]string{"Total area", fmt.Sprintf("%.4g", stats.TotalArea)})
	table.Append([]string{"Drift", fmt.Sprintf("%.3f", tree.Drift())})
	if !bounds.IsEmpty() {
		table.Append([]string{"Bounds min", fmt.Sprintf("%.4g %.4g %.4g", bounds.Min[0], bounds.Min[1], bounds.Min[2])})
		table.Append([]string{"Bounds max", fmt.Sprintf("%.4g %.4g %.4g", bounds.Max[0], bounds.Max[1], bounds.Max[2])})
	}
	table.Render()
	return nil
}
