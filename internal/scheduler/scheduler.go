// Package scheduler drives the fixed-ratio outer loop that is this core's
// only notion of time: one iteration checks DMA start conditions, then
// steps DMA or the processor, the timer unit, and the video controller in
// a fixed ratio each iteration.
package scheduler

import (
	"context"

	"GoBA/internal/bus"
	"GoBA/internal/cpu"
)

const (
	stepsPerIteration      = 2
	timerStepsPerIteration = 4
)

// Scheduler owns the CPU and the bus it steps against; DMA, timer, and
// video components are reached through the bus.
type Scheduler struct {
	bus *bus.Bus
	cpu *cpu.CPU
}

func New(b *bus.Bus, c *cpu.CPU) *Scheduler {
	return &Scheduler{bus: b, cpu: c}
}

// Iterate performs exactly one outer loop pass and reports whether a
// completed frame is now available.
func (s *Scheduler) Iterate() (frameReady bool, err error) {
	dmac := s.bus.DMA()

	if dmac.IsEnabled() {
		if err := dmac.CheckStartConditions(); err != nil {
			return false, err
		}
	}

	if dmac.IsRunning() {
		for i := 0; i < stepsPerIteration; i++ {
			dmac.Step()
		}
	} else {
		for i := 0; i < stepsPerIteration; i++ {
			s.cpu.Step()
		}
	}

	timers := s.bus.Timers()
	for i := 0; i < timerStepsPerIteration; i++ {
		timers.Step()
	}

	video := s.bus.Video()
	if err := video.Tick(); err != nil {
		return false, err
	}

	return video.IsFrameReady(), nil
}

// Run drives Iterate in a loop until ctx is cancelled, an unrecoverable
// error is raised, or maxFrames (if positive) have been produced. The
// context is checked once per outer iteration, between iterations, never
// mid-instruction. Each completed frame is handed to onFrame before the
// loop continues.
func (s *Scheduler) Run(ctx context.Context, maxFrames int, onFrame func([]uint16)) error {
	frames := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ready, err := s.Iterate()
		if err != nil {
			return err
		}
		if ready {
			onFrame(s.bus.Video().ConsumeFrame())
			frames++
			if maxFrames > 0 && frames >= maxFrames {
				return nil
			}
		}
	}
}
