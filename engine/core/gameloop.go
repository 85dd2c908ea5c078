package core

import "time"

// LoopState represents the state of the turn loop
type LoopState uint8

const (
	StatePaused LoopState = iota
	StatePlaying
	StateGameOver
)

// maxTurnsPerFrame caps catch-up after a stall
const maxTurnsPerFrame = 8

// TurnLoop paces a turn-based simulation against wall-clock time
type TurnLoop struct {
	State       LoopState
	Interval    time.Duration
	Step        func() bool // returns false once the game is over
	accumulator time.Duration
	lastTime    time.Time
	now         func() time.Time
}

// NewTurnLoop creates a loop that calls step once per interval
func NewTurnLoop(interval time.Duration, step func() bool) *TurnLoop {
	return &TurnLoop{
		Interval: interval,
		Step:     step,
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// Update should be called every render frame. Returns the number of turns run.
func (tl *TurnLoop) Update() int {
	now := tl.now()
	frame := now.Sub(tl.lastTime)
	tl.lastTime = now
	if tl.State != StatePlaying {
		return 0
	}

	tl.accumulator += frame
	turns := 0
	for tl.accumulator >= tl.Interval && turns < maxTurnsPerFrame {
		tl.accumulator -= tl.Interval
		turns++
		if !tl.Step() {
			tl.State = StateGameOver
			break
		}
	}
	if turns == maxTurnsPerFrame {
		tl.accumulator = 0
	}
	return turns
}

// StepOnce runs a single turn while paused
func (tl *TurnLoop) StepOnce() {
	if tl.State == StatePaused && !tl.Step() {
		tl.State = StateGameOver
	}
}

// Play starts or resumes the loop
func (tl *TurnLoop) Play() {
	if tl.State == StateGameOver {
		return
	}
	tl.State = StatePlaying
	tl.lastTime = tl.now()
}

// Pause pauses the loop
func (tl *TurnLoop) Pause() {
	if tl.State == StatePlaying {
		tl.State = StatePaused
	}
}

// Toggle flips between playing and paused
func (tl *TurnLoop) Toggle() {
	if tl.State == StatePlaying {
		tl.Pause()
	} else {
		tl.Play()
	}
}
