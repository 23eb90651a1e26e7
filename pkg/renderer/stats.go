package renderer

import "time"

// FrameStats contains statistics about one rendered frame
type FrameStats struct {
	Rays          int           // low-resolution rays marched
	MarchSteps    int           // total raymarch steps across all rays
	LightSteps    int           // total light-march samples
	SkippedSpans  int           // empty-space jumps taken by the scheduler
	EarlyOuts     int           // rays terminated by opacity
	Disocclusions int           // full-res pixels that lost their history
	ClippedPixels int           // full-res pixels whose history was clipped
	MarchTime     time.Duration // wall time of the low-resolution pass
	ResolveTime   time.Duration // wall time of the temporal resolve
}

// merge folds one worker's counters into the frame totals
func (fs *FrameStats) merge(other FrameStats) {
	fs.Rays += other.Rays
	fs.MarchSteps += other.MarchSteps
	fs.LightSteps += other.LightSteps
	fs.SkippedSpans += other.SkippedSpans
	fs.EarlyOuts += other.EarlyOuts
}

// AverageSteps returns the mean raymarch step count per ray
func (fs *FrameStats) AverageSteps() float64 {
	if fs.Rays == 0 {
		return 0
	}
	return float64(fs.MarchSteps) / float64(fs.Rays)
}
