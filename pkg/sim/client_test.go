package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedClientReplaysSequence(t *testing.T) {
	sequence := []*Request{NewRequest(2), nil, NewRequest(5)}
	client := NewFixedClient(sequence, RegionUS, 0, 1)

	first := client.Observe(0)
	require.Len(t, first, 1)
	assert.Equal(t, 2, first[0].ExecutionTime)
	assert.Equal(t, 0, first[0].StartTick)
	assert.Equal(t, RegionUS, first[0].ClientRegion)

	assert.Empty(t, client.Observe(1), "nil entries emit nothing")

	third := client.Observe(2)
	require.Len(t, third, 1)
	assert.Equal(t, 5, third[0].ExecutionTime)

	// Sequence wraps around and every emission is a fresh request.
	fourth := client.Observe(3)
	require.Len(t, fourth, 1)
	assert.Equal(t, 2, fourth[0].ExecutionTime)
	assert.NotEqual(t, first[0].ID, fourth[0].ID)
}

func TestClientPeriodGating(t *testing.T) {
	client := NewFixedClient([]*Request{NewRequest(1)}, RegionUS, 0, 3)

	assert.Len(t, client.Observe(0), 1)
	assert.Empty(t, client.Observe(1))
	assert.Empty(t, client.Observe(2))
	assert.Len(t, client.Observe(3), 1)
}

func TestRandomChoiceClientDrawsFromCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	client := NewRandomChoiceClient([]int{1, 2, 3}, rng, RegionAsia, 10, 1)

	for tick := 0; tick < 50; tick++ {
		reqs := client.Observe(tick)
		require.Len(t, reqs, 1)
		assert.Contains(t, []int{1, 2, 3}, reqs[0].ExecutionTime)
		assert.Equal(t, 10, reqs[0].DeadlineTicks)
	}
}

func TestRandomSendClientProbabilityBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	never := NewRandomSendClient(0, 4, rng, RegionUS, 0, 1)
	always := NewRandomSendClient(1, 4, rng, RegionUS, 0, 1)
	for tick := 0; tick < 20; tick++ {
		assert.Empty(t, never.Observe(tick))
		assert.Len(t, always.Observe(tick), 1)
	}
}

func TestDayNightClientProb(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	client := NewDayNightClient(0.9, 0.1, 3, 10, 5, 2, rng, RegionUS, 0, 1)

	assert.Equal(t, 0.9, client.Prob(0))
	assert.Equal(t, 0.9, client.Prob(9))
	assert.Equal(t, 0.1, client.Prob(10))
	assert.Equal(t, 0.1, client.Prob(14))
	assert.Equal(t, 0.9, client.Prob(15), "cycle wraps back to day")
}

func TestDayNightClientEmitsBatches(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	client := NewDayNightClient(1, 1, 3, 5, 5, 4, rng, RegionUS, 0, 1)

	reqs := client.Observe(0)
	require.Len(t, reqs, 4)
	for _, req := range reqs {
		assert.Equal(t, 3, req.ExecutionTime)
	}
}

func TestBurstClientFiresOnInterval(t *testing.T) {
	client := NewBurstClient(3, 5, 2, RegionAsia, 0, 1)

	burst := client.Observe(0)
	require.Len(t, burst, 3)
	for tick := 1; tick < 5; tick++ {
		assert.Empty(t, client.Observe(tick))
	}
	assert.Len(t, client.Observe(5), 3)
}

func TestClientMetaInfo(t *testing.T) {
	client := NewBurstClient(3, 5, 2, RegionAsia, 20, 1)
	meta := client.MetaInfo()

	assert.Equal(t, "BurstClient", meta["name"])
	assert.Equal(t, "asia", meta["region"])
	assert.Equal(t, 20, meta["deadline_ticks"])
	assert.Equal(t, 3, meta["burst_size"])
}
