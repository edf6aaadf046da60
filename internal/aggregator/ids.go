package aggregator

import "sync/atomic"

// Allocator hands out sequential ids per entity kind. One allocator is
// owned by a run; ids start at 1 and are never reused.
type Allocator struct {
	feature  atomic.Int64
	scenario atomic.Int64
	step     atomic.Int64
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

func (a *Allocator) NextFeature() int64  { return a.feature.Add(1) }
func (a *Allocator) NextScenario() int64 { return a.scenario.Add(1) }
func (a *Allocator) NextStep() int64     { return a.step.Add(1) }
