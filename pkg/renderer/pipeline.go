package renderer

import (
	"fmt"
	"time"

	"github.com/cloudmarch/sky/pkg/atmosphere"
	"github.com/cloudmarch/sky/pkg/core"
	"github.com/cloudmarch/sky/pkg/integrator"
	"github.com/cloudmarch/sky/pkg/log"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
	"github.com/cloudmarch/sky/pkg/noise"
	"github.com/cloudmarch/sky/pkg/temporal"
	"github.com/cloudmarch/sky/pkg/volume"
)

var logger = log.New("renderer")

// Config contains configuration for the frame pipeline
type Config struct {
	Width, Height int     // full-resolution output size
	Downscale     int     // march resolution divisor (4 recommended)
	TMax          float64 // march range in meters
	BandHeight    int     // rows per worker task
	NumWorkers    int     // number of parallel workers (0 = use CPU count)
	March         integrator.Config
	Temporal      temporal.Config
}

// DefaultConfig returns sensible default values for the given output size
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		Downscale:  4,
		TMax:       80000,
		BandHeight: 16,
		NumWorkers: 0,
		March:      integrator.DefaultConfig(),
		Temporal:   temporal.DefaultConfig(),
	}
}

// Pipeline runs the two-stage frame loop: a low-resolution raymarch pass
// over a worker pool, then a full-resolution temporal resolve.
type Pipeline struct {
	config Config
	frame  int

	low   *core.FrameBuffers
	recon *temporal.Reconstructor
}

// NewPipeline creates a pipeline for the configured output size
func NewPipeline(config Config) (*Pipeline, error) {
	if config.Downscale < 1 {
		config.Downscale = 1
	}
	lowW := max(1, config.Width/config.Downscale)
	lowH := max(1, config.Height/config.Downscale)

	low, err := core.NewFrameBuffers(lowW, lowH)
	if err != nil {
		return nil, err
	}
	recon, err := temporal.NewReconstructor(config.Width, config.Height, config.Temporal)
	if err != nil {
		return nil, err
	}
	return &Pipeline{config: config, low: low, recon: recon}, nil
}

// Resize changes the output size and discards all temporal history
func (p *Pipeline) Resize(width, height int) error {
	config := p.config
	config.Width = width
	config.Height = height
	next, err := NewPipeline(config)
	if err != nil {
		return err
	}
	*p = *next
	return nil
}

// ResetHistory discards temporal history without resizing, for scene cuts
func (p *Pipeline) ResetHistory() {
	p.recon.Reset()
}

// RenderFrame marches the low-resolution pass for the given view and scene
// content, then resolves it against history. The returned buffer holds the
// full-resolution frame and is valid until the next RenderFrame.
func (p *Pipeline) RenderFrame(view *core.ViewState, field *volume.Field, atmos *atmosphere.Model, prims []core.Primitive) (*core.History, FrameStats, error) {
	if len(prims) > core.MaxPrimitives {
		return nil, FrameStats{}, fmt.Errorf("renderer: %d primitives exceeds limit %d", len(prims), core.MaxPrimitives)
	}

	var stats FrameStats
	marchStart := time.Now()

	in := integrator.New(view, field, atmos, prims, p.config.March)

	bandH := max(1, p.config.BandHeight)
	numBands := (p.low.Height + bandH - 1) / bandH
	pool := NewWorkerPool(p.config.NumWorkers, numBands)
	pool.Start()

	taskID := 0
	for y := 0; y < p.low.Height; y += bandH {
		pool.SubmitTask(BandTask{
			Y0:         y,
			Y1:         min(y+bandH, p.low.Height),
			Integrator: in,
			View:       view,
			Buffers:    p.low,
			TMax:       p.config.TMax,
			TaskID:     taskID,
		})
		taskID++
	}
	pool.Stop()

	for i := 0; i < numBands; i++ {
		result, ok := pool.GetResult()
		if !ok {
			return nil, stats, fmt.Errorf("renderer: worker pool closed unexpectedly")
		}
		if result.Error != nil {
			return nil, stats, result.Error
		}
		stats.merge(result.Stats)
	}
	stats.MarchTime = time.Since(marchStart)

	resolveStart := time.Now()
	out, rstats, err := p.recon.Resolve(p.low)
	if err != nil {
		return nil, stats, err
	}
	stats.Disocclusions = rstats.Disocclusions
	stats.ClippedPixels = rstats.Clipped
	stats.ResolveTime = time.Since(resolveStart)

	p.frame++
	logger.Debugf("frame %d: %d rays, %.1f avg steps, %d skips, march %v, resolve %v",
		p.frame, stats.Rays, stats.AverageSteps(), stats.SkippedSpans, stats.MarchTime, stats.ResolveTime)

	return out, stats, nil
}

// marchBand integrates every pixel of one band and writes color, alpha,
// depth, and motion into the shared buffers
func marchBand(task BandTask) FrameStats {
	var stats FrameStats
	buf := task.Buffers
	view := task.View

	for y := task.Y0; y < task.Y1; y++ {
		for x := 0; x < buf.Width; x++ {
			u := (float64(x) + 0.5) / float64(buf.Width)
			v := (float64(y) + 0.5) / float64(buf.Height)
			idx := buf.Index(x, y)

			ray, ok := view.RayThrough(u, v)
			if !ok {
				buf.Color[idx] = mathpkg.Vec3{}
				buf.Alpha[idx] = 0
				buf.Depth[idx] = 1
				buf.Motion[idx] = mathpkg.Vec2{}
				continue
			}

			dither := noise.Hash21(float64(x)+float64(view.Frame%64)*7.31, float64(y))
			res := task.Integrator.March(ray, task.TMax, dither)

			buf.Color[idx] = res.Color
			buf.Alpha[idx] = res.Alpha
			buf.Depth[idx] = res.Depth
			buf.Motion[idx] = motionVector(view, ray, res.Depth, task.TMax, u, v)

			stats.Rays++
			stats.MarchSteps += res.Stats.Steps
			stats.LightSteps += res.Stats.LightSteps
			stats.SkippedSpans += res.Stats.Skips
			if res.Stats.EarlyOut {
				stats.EarlyOuts++
			}
		}
	}
	return stats
}

// motionVector reprojects the density-weighted world point through the
// previous frame's matrices. A point behind the previous camera yields a
// vector that pushes the reprojection off screen, which the resolve treats
// as a disocclusion.
func motionVector(view *core.ViewState, ray mathpkg.Ray, depth, tMax float64, u, v float64) mathpkg.Vec2 {
	p := ray.At(depth * tMax)
	prev, ok := view.PrevScreenUV(p)
	if !ok {
		return mathpkg.Vec2{X: 2, Y: 2}
	}
	return mathpkg.Vec2{X: u - prev.X, Y: v - prev.Y}
}
