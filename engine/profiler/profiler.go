package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Sample is the per-frame data the engine hands to the profiler.
type Sample struct {
	LiveSprites   int
	ActiveSprites int
	DrawCalls     int
	Updates       int
}

// Report is one interval's worth of aggregated statistics.
type Report struct {
	FPS           float64
	UpdatesPerS   float64
	HeapMB        float64
	AllocRateMB   float64
	SysMB         float64
	GCCount       uint32
	MaxPauseUs    uint64
	LiveSprites   int
	ActiveSprites int
	DrawCalls     int
}

// Profiler tracks frame rate, update rate, memory and sprite statistics.
// Logs a Report at info level once per interval.
type Profiler struct {
	logger *zap.Logger
	now    func() time.Time

	frameCount     int
	updateCount    int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Report
}

// NewProfiler creates a new Profiler logging to logger every second.
//
// Parameters:
//   - logger: destination of the periodic reports
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		logger:         logger,
		now:            time.Now,
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick should be called once per rendered frame.
//
// Parameters:
//   - s: the frame's sample
//
// Returns:
//   - bool: true if a report was logged this tick
func (p *Profiler) Tick(s Sample) bool {
	p.frameCount++
	p.updateCount += s.Updates
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	// PauseNs is a circular buffer of the last 256 pauses
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.last = Report{
		FPS:           float64(p.frameCount) / elapsed.Seconds(),
		UpdatesPerS:   float64(p.updateCount) / elapsed.Seconds(),
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:   float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:       gcCount,
		MaxPauseUs:    maxPauseUs,
		LiveSprites:   s.LiveSprites,
		ActiveSprites: s.ActiveSprites,
		DrawCalls:     s.DrawCalls,
	}
	p.logger.Info("profiler",
		zap.Float64("fps", p.last.FPS),
		zap.Float64("updatesPerSecond", p.last.UpdatesPerS),
		zap.Float64("heapMB", p.last.HeapMB),
		zap.Float64("allocRateMB", p.last.AllocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Uint64("maxPauseUs", maxPauseUs),
		zap.Float64("sysMB", p.last.SysMB),
		zap.Int("liveSprites", s.LiveSprites),
		zap.Int("activeSprites", s.ActiveSprites),
		zap.Int("drawCalls", s.DrawCalls),
	)

	p.frameCount = 0
	p.updateCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent report.
//
// Returns:
//   - Report: the last logged report, zero before the first interval elapses
func (p *Profiler) Last() Report {
	return p.last
}
