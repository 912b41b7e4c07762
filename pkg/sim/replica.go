package sim

import "sync/atomic"

var replicaCounter uint64

// Replica consumes the requests a balancer assigns to it. Step receives the
// requests assigned for this tick and returns the requests that finished
// during it (successfully or by deadline expiry).
type Replica interface {
	ID() uint64
	Region() Region
	QueueLen() int
	Step(tick int, assigned []*Request) []*Request
	Info() map[string]any
	MetaInfo() map[string]any
}

// AcceleratorReplica processes its queue front-first with a per-tick compute
// budget determined by its accelerator.
type AcceleratorReplica struct {
	id          uint64
	region      Region
	accelerator Accelerator
	queue       []*Request
}

func NewAcceleratorReplica(region Region, accelerator Accelerator) *AcceleratorReplica {
	return &AcceleratorReplica{
		id:          atomic.AddUint64(&replicaCounter, 1),
		region:      region,
		accelerator: accelerator,
	}
}

func (r *AcceleratorReplica) ID() uint64 {
	return r.id
}

func (r *AcceleratorReplica) Region() Region {
	return r.region
}

func (r *AcceleratorReplica) Accelerator() Accelerator {
	return r.accelerator
}

func (r *AcceleratorReplica) QueueLen() int {
	return len(r.queue)
}

func (r *AcceleratorReplica) Step(tick int, assigned []*Request) []*Request {
	r.queue = append(r.queue, assigned...)

	budget := r.accelerator.Compute()
	spent := 0
	for _, req := range r.queue {
		work := min(req.Remaining, budget-spent)
		req.Remaining -= work
		spent += work
		if spent == budget {
			break
		}
	}

	var finished []*Request
	remaining := r.queue[:0]
	for _, req := range r.queue {
		if req.Finished(tick) {
			if req.FinishTick < 0 {
				req.FinishTick = tick
			}
			finished = append(finished, req)
		} else {
			remaining = append(remaining, req)
		}
	}
	r.queue = remaining
	return finished
}

func (r *AcceleratorReplica) Info() map[string]any {
	queued := make([]uint64, len(r.queue))
	for i, req := range r.queue {
		queued[i] = req.ID
	}
	return map[string]any{
		"id":           r.id,
		"queue_length": len(r.queue),
		"queue":        queued,
		"accelerator":  string(r.accelerator),
	}
}

func (r *AcceleratorReplica) MetaInfo() map[string]any {
	return map[string]any{
		"id":          r.id,
		"name":        "AcceleratorReplica",
		"region":      string(r.region),
		"accelerator": string(r.accelerator),
	}
}
