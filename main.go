package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/mtavis/go-bvh/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "bvhtool"
	app.Usage = "build, inspect and query bounding volume hierarchies"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a tree over a box list and persist it",
			Description: `
Read a flat list of axis-aligned boxes, build a BVH over them using the
surface area heuristic and write the flattened tree to a file that can be
reloaded without reconstruction.`,
			ArgsUsage: "boxes.bin",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "TOML file with construction options",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "tree.bvh",
					Usage: "output file for the built tree",
				},
			},
			Action: cmd.BuildTree,
		},
		{
			Name:      "inspect",
			Usage:     "print statistics for a persisted tree",
			ArgsUsage: "tree.bvh",
			Action:    cmd.InspectTree,
		},
		{
			Name:      "query",
			Usage:     "shoot a ray through a persisted tree",
			ArgsUsage: "tree.bvh boxes.bin",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "origin",
					Value: "0,0,0",
					Usage: "ray origin as x,y,z",
				},
				cli.StringFlag{
					Name:  "dir",
					Value: "1,0,0",
					Usage: "ray direction as x,y,z",
				},
				cli.BoolFlag{
					Name:  "any",
					Usage: "report only whether anything is hit",
				},
			},
			Action: cmd.QueryTree,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
