package sim

import (
	"math/rand"
	"sync/atomic"
)

var clientCounter uint64

// Client produces the new requests for a tick. Observe returns nil on ticks
// the client is idle; returned requests already carry their start tick,
// deadline and region.
type Client interface {
	ID() uint64
	Region() Region
	Observe(tick int) []*Request
	MetaInfo() map[string]any
}

type clientBase struct {
	id            uint64
	name          string
	region        Region
	deadlineTicks int
	periodTicks   int
}

func newClientBase(name string, region Region, deadlineTicks, periodTicks int) clientBase {
	if periodTicks <= 0 {
		periodTicks = 1
	}
	return clientBase{
		id:            atomic.AddUint64(&clientCounter, 1),
		name:          name,
		region:        region,
		deadlineTicks: deadlineTicks,
		periodTicks:   periodTicks,
	}
}

func (c *clientBase) ID() uint64 {
	return c.id
}

func (c *clientBase) Region() Region {
	return c.region
}

// active reports whether the client emits on this tick at all.
func (c *clientBase) active(tick int) bool {
	return tick%c.periodTicks == 0
}

// stamp fills in the bookkeeping every emitted request needs.
func (c *clientBase) stamp(tick int, reqs []*Request) []*Request {
	for _, req := range reqs {
		req.StartTick = tick
		req.DeadlineTicks = c.deadlineTicks
		req.ClientRegion = c.region
	}
	return reqs
}

func (c *clientBase) MetaInfo() map[string]any {
	return map[string]any{
		"id":             c.id,
		"name":           c.name,
		"region":         string(c.region),
		"deadline_ticks": c.deadlineTicks,
		"period_ticks":   c.periodTicks,
	}
}

// FixedClient replays a fixed request sequence, one entry per active tick,
// wrapping around at the end. A nil entry means "emit nothing this time".
type FixedClient struct {
	clientBase
	sequence []*Request
	idx      int
}

func NewFixedClient(sequence []*Request, region Region, deadlineTicks, periodTicks int) *FixedClient {
	return &FixedClient{
		clientBase: newClientBase("FixedClient", region, deadlineTicks, periodTicks),
		sequence:   sequence,
	}
}

func (c *FixedClient) Observe(tick int) []*Request {
	if !c.active(tick) || len(c.sequence) == 0 {
		return nil
	}
	cur := c.sequence[c.idx]
	c.idx = (c.idx + 1) % len(c.sequence)
	if cur == nil {
		return nil
	}
	return c.stamp(tick, []*Request{cur.Clone()})
}

func (c *FixedClient) MetaInfo() map[string]any {
	meta := c.clientBase.MetaInfo()
	seq := make([]map[string]any, len(c.sequence))
	for i, req := range c.sequence {
		if req != nil {
			seq[i] = req.MetaInfo()
		}
	}
	meta["sequence"] = seq
	return meta
}

// RandomChoiceClient emits one request per active tick with a workload drawn
// uniformly from its candidate list.
type RandomChoiceClient struct {
	clientBase
	candidates []int
	rng        *rand.Rand
}

func NewRandomChoiceClient(candidates []int, rng *rand.Rand, region Region, deadlineTicks, periodTicks int) *RandomChoiceClient {
	return &RandomChoiceClient{
		clientBase: newClientBase("RandomChoiceClient", region, deadlineTicks, periodTicks),
		candidates: candidates,
		rng:        rng,
	}
}

func (c *RandomChoiceClient) Observe(tick int) []*Request {
	if !c.active(tick) || len(c.candidates) == 0 {
		return nil
	}
	workload := c.candidates[c.rng.Intn(len(c.candidates))]
	return c.stamp(tick, []*Request{NewRequest(workload)})
}

func (c *RandomChoiceClient) MetaInfo() map[string]any {
	meta := c.clientBase.MetaInfo()
	meta["workload_candidates"] = c.candidates
	return meta
}

// RandomSendClient emits a fixed-workload request with probability prob on
// each active tick.
type RandomSendClient struct {
	clientBase
	prob     float64
	workload int
	rng      *rand.Rand
}

func NewRandomSendClient(prob float64, workload int, rng *rand.Rand, region Region, deadlineTicks, periodTicks int) *RandomSendClient {
	return &RandomSendClient{
		clientBase: newClientBase("RandomSendClient", region, deadlineTicks, periodTicks),
		prob:       prob,
		workload:   workload,
		rng:        rng,
	}
}

func (c *RandomSendClient) Observe(tick int) []*Request {
	if !c.active(tick) || c.rng.Float64() >= c.prob {
		return nil
	}
	return c.stamp(tick, []*Request{NewRequest(c.workload)})
}

func (c *RandomSendClient) MetaInfo() map[string]any {
	meta := c.clientBase.MetaInfo()
	meta["prob"] = c.prob
	meta["workload"] = c.workload
	return meta
}

// DayNightClient alternates between a day and a night send probability over
// a fixed day/night cycle, emitting numReq requests when it fires.
type DayNightClient struct {
	clientBase
	dayProb    float64
	nightProb  float64
	workload   int
	dayTicks   int
	nightTicks int
	numReq     int
	rng        *rand.Rand
}

func NewDayNightClient(dayProb, nightProb float64, workload, dayTicks, nightTicks, numReq int, rng *rand.Rand, region Region, deadlineTicks, periodTicks int) *DayNightClient {
	return &DayNightClient{
		clientBase: newClientBase("DayNightClient", region, deadlineTicks, periodTicks),
		dayProb:    dayProb,
		nightProb:  nightProb,
		workload:   workload,
		dayTicks:   dayTicks,
		nightTicks: nightTicks,
		numReq:     numReq,
		rng:        rng,
	}
}

// Prob returns the send probability in effect at the given tick.
func (c *DayNightClient) Prob(tick int) float64 {
	if tick%(c.dayTicks+c.nightTicks) < c.dayTicks {
		return c.dayProb
	}
	return c.nightProb
}

func (c *DayNightClient) Observe(tick int) []*Request {
	if !c.active(tick) || c.rng.Float64() >= c.Prob(tick) {
		return nil
	}
	reqs := make([]*Request, c.numReq)
	for i := range reqs {
		reqs[i] = NewRequest(c.workload)
	}
	return c.stamp(tick, reqs)
}

func (c *DayNightClient) MetaInfo() map[string]any {
	meta := c.clientBase.MetaInfo()
	meta["day_prob"] = c.dayProb
	meta["night_prob"] = c.nightProb
	meta["day_ticks"] = c.dayTicks
	meta["night_ticks"] = c.nightTicks
	meta["num_req"] = c.numReq
	return meta
}

// BurstClient emits a burst of identical requests every burst interval.
type BurstClient struct {
	clientBase
	burstSize     int
	burstInterval int
	workload      int
}

func NewBurstClient(burstSize, burstInterval, workload int, region Region, deadlineTicks, periodTicks int) *BurstClient {
	if burstInterval <= 0 {
		burstInterval = 1
	}
	return &BurstClient{
		clientBase:    newClientBase("BurstClient", region, deadlineTicks, periodTicks),
		burstSize:     burstSize,
		burstInterval: burstInterval,
		workload:      workload,
	}
}

func (c *BurstClient) Observe(tick int) []*Request {
	if !c.active(tick) || tick%c.burstInterval != 0 {
		return nil
	}
	reqs := make([]*Request, c.burstSize)
	for i := range reqs {
		reqs[i] = NewRequest(c.workload)
	}
	return c.stamp(tick, reqs)
}

func (c *BurstClient) MetaInfo() map[string]any {
	meta := c.clientBase.MetaInfo()
	meta["burst_size"] = c.burstSize
	meta["burst_interval"] = c.burstInterval
	meta["workload"] = c.workload
	return meta
}
