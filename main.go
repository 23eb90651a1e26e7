package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/cloudmarch/sky/cmd"
	"github.com/cloudmarch/sky/pkg/log"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "cloudmarch"
	app.Usage = "volumetric sky renderer with temporal reconstruction"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a frame sequence of the demo scene",
			Description: `
March the demo sky at reduced resolution, temporally reconstruct each frame
at full resolution, and write the final frame to disk. Output format is
chosen by the file extension (.png or .webp).`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 1280,
					Usage: "output width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 720,
					Usage: "output height",
				},
				cli.IntFlag{
					Name:  "frames",
					Value: 48,
					Usage: "number of frames to march before the snapshot",
				},
				cli.IntFlag{
					Name:  "downscale",
					Value: 4,
					Usage: "march resolution divisor",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "parallel workers (0 = CPU count)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "demo scene seed",
				},
				cli.StringFlag{
					Name:  "weather",
					Usage: "optional coverage mask image (png, jpeg or tga)",
				},
				cli.StringFlag{
					Name:  "out",
					Value: "sky.png",
					Usage: "output image path",
				},
			},
			Action: cmd.RenderSequence,
		},
		{
			Name:  "inspect",
			Usage: "print the demo scene inventory and its packed size",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  "seed",
					Value: 42,
					Usage: "demo scene seed",
				},
			},
			Action: cmd.InspectScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("cloudmarch").Errorf("%v", err)
		os.Exit(1)
	}
}
