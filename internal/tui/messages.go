package tui

import "time"

// TickMsg fires once per poll interval.
type TickMsg time.Time

// AnimFrameMsg advances tile transitions.
type AnimFrameMsg time.Time

// countLoadedMsg carries one fetch result back to the page.
type countLoadedMsg struct {
	seq   uint64
	count int64
	err   error
}

// animFrameInterval gives roughly 30 frames per second.
const animFrameInterval = 33 * time.Millisecond
