package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/cloudmarch/sky/pkg/renderer"
	"github.com/cloudmarch/sky/pkg/scene"
)

// RenderSequence renders a frame sequence of the demo scene with the orbit
// camera and writes the final resolved frame to disk.
func RenderSequence(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := scene.NewDemoScene(ctx.Int64("seed"))
	if err != nil {
		return err
	}

	if path := ctx.String("weather"); path != "" {
		weather, err := scene.LoadWeatherImage(path)
		if err != nil {
			return err
		}
		sc.Weather = weather
		logger.Infof("loaded weather mask from %s", path)
	}

	width := ctx.Int("width")
	height := ctx.Int("height")
	frames := ctx.Int("frames")
	if frames < 1 {
		return fmt.Errorf("need at least 1 frame, got %d", frames)
	}

	config := renderer.DefaultConfig(width, height)
	config.Downscale = ctx.Int("downscale")
	config.NumWorkers = ctx.Int("workers")

	pipeline, err := renderer.NewPipeline(config)
	if err != nil {
		return err
	}

	camera := scene.NewOrbitCamera(sc.PlanetRadius)
	dt := 1.0 / 30.0

	logger.Infof("rendering %d frames at %dx%d (march at 1/%d resolution)",
		frames, width, height, config.Downscale)

	var total renderer.FrameStats
	start := time.Now()
	for i := 0; i < frames; i++ {
		view := camera.Next(dt, width, height)
		frame, stats, err := pipeline.RenderFrame(view, sc.Field(view), sc.Atmos, sc.Primitives)
		if err != nil {
			return err
		}
		total = accumulate(total, stats)

		if i == frames-1 {
			if err := renderer.WriteSnapshot(ctx.String("out"), frame); err != nil {
				return err
			}
			logger.Infof("wrote %s", ctx.String("out"))
		}
	}

	displayFrameStats(total, frames, time.Since(start))
	return nil
}

func accumulate(total, stats renderer.FrameStats) renderer.FrameStats {
	total.Rays += stats.Rays
	total.MarchSteps += stats.MarchSteps
	total.LightSteps += stats.LightSteps
	total.SkippedSpans += stats.SkippedSpans
	total.EarlyOuts += stats.EarlyOuts
	total.Disocclusions += stats.Disocclusions
	total.ClippedPixels += stats.ClippedPixels
	total.MarchTime += stats.MarchTime
	total.ResolveTime += stats.ResolveTime
	return total
}

func displayFrameStats(total renderer.FrameStats, frames int, wall time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Rays", "Avg steps", "Skips", "Early outs", "Disocclusions", "March", "Resolve"})
	table.Append([]string{
		fmt.Sprintf("%d", total.Rays),
		fmt.Sprintf("%.1f", total.AverageSteps()),
		fmt.Sprintf("%d", total.SkippedSpans),
		fmt.Sprintf("%d", total.EarlyOuts),
		fmt.Sprintf("%d", total.Disocclusions),
		fmt.Sprintf("%s", total.MarchTime),
		fmt.Sprintf("%s", total.ResolveTime),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", fmt.Sprintf("%s", wall)})

	table.Render()
	logger.Infof("statistics for %d frames\n%s", frames, buf.String())
}
