package sim

import "sync/atomic"

// Region is the geographical placement of a client or replica.
type Region string

const (
	RegionUS   Region = "us"
	RegionAsia Region = "asia"
)

// Accelerator identifies the hardware a replica runs on. Compute() is the
// number of work units it can burn per tick.
type Accelerator string

const (
	AcceleratorA100 Accelerator = "A100"
	AcceleratorT4   Accelerator = "T4"
)

func (a Accelerator) Compute() int {
	switch a {
	case AcceleratorA100:
		return 10
	case AcceleratorT4:
		return 1
	default:
		return 0
	}
}

var requestCounter uint64

// Request is a single unit of traffic travelling through the simulation.
// ExecutionTime is the total compute it needs; Remaining counts down as
// replicas spend budget on it. Ticks default to -1 for "not set".
type Request struct {
	ID            uint64
	ExecutionTime int
	Remaining     int
	StartTick     int
	FinishTick    int
	// DeadlineTicks is relative to StartTick; 0 means no deadline.
	DeadlineTicks int
	ClientRegion  Region
	Expired       bool
}

func NewRequest(executionTime int) *Request {
	return &Request{
		ID:            atomic.AddUint64(&requestCounter, 1),
		ExecutionTime: executionTime,
		Remaining:     executionTime,
		StartTick:     -1,
		FinishTick:    -1,
	}
}

// Clone returns a fresh copy with its own ID and reset progress. Used by
// clients that replay a fixed request sequence.
func (r *Request) Clone() *Request {
	c := NewRequest(r.ExecutionTime)
	c.DeadlineTicks = r.DeadlineTicks
	c.ClientRegion = r.ClientRegion
	return c
}

// Latency returns the number of ticks between start and finish. The second
// return value is false while the request is still in flight.
func (r *Request) Latency() (int, bool) {
	if r.StartTick < 0 || r.FinishTick < 0 {
		return 0, false
	}
	return r.FinishTick - r.StartTick, true
}

// Finished reports whether the request is done at the given tick, either
// because its compute ran out or because its deadline passed. Deadline
// expiry is sticky: once marked expired the request stays expired.
func (r *Request) Finished(tick int) bool {
	if r.Remaining <= 0 {
		return true
	}
	if r.StartTick >= 0 && r.DeadlineTicks > 0 && tick >= r.StartTick+r.DeadlineTicks {
		r.Expired = true
		return true
	}
	return false
}

// ClearCompute resets the request's progress to its full execution time.
func (r *Request) ClearCompute() {
	r.Remaining = r.ExecutionTime
}

func (r *Request) Info() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"remaining": r.Remaining,
		"finish":    r.FinishTick,
		"expired":   r.Expired,
	}
}

func (r *Request) MetaInfo() map[string]any {
	return map[string]any{
		"id":             r.ID,
		"execution_time": r.ExecutionTime,
		"start":          r.StartTick,
		"deadline_ticks": r.DeadlineTicks,
		"client_region":  string(r.ClientRegion),
	}
}
