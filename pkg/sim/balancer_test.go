package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(b Balancer, n int) []Replica {
	replicas := make([]Replica, n)
	for i := range replicas {
		replicas[i] = NewAcceleratorReplica(RegionUS, AcceleratorT4)
		b.Register(replicas[i])
	}
	return replicas
}

func requests(n int) []*Request {
	reqs := make([]*Request, n)
	for i := range reqs {
		reqs[i] = startedRequest(1, 0)
	}
	return reqs
}

func TestRoundRobinCyclesThroughReplicas(t *testing.T) {
	b := NewRoundRobinBalancer()
	newTestPool(b, 3)

	assignment := b.Assign(0, requests(7))
	require.Len(t, assignment, 3)
	assert.Len(t, assignment[0], 3)
	assert.Len(t, assignment[1], 2)
	assert.Len(t, assignment[2], 2)
}

func TestRoundRobinRemembersPositionAcrossTicks(t *testing.T) {
	b := NewRoundRobinBalancer()
	newTestPool(b, 2)

	b.Assign(0, requests(1))
	assignment := b.Assign(1, requests(1))
	assert.Empty(t, assignment[0])
	assert.Len(t, assignment[1], 1)
}

func TestLeastLoadPrefersShortQueues(t *testing.T) {
	b := NewLeastLoadBalancer()
	replicas := newTestPool(b, 2)

	// Preload the first replica with a long queue.
	replicas[0].Step(0, requests(5))

	assignment := b.Assign(1, requests(2))
	assert.Empty(t, assignment[0])
	assert.Len(t, assignment[1], 2)
}

func TestLeastLoadCountsSameTickAssignments(t *testing.T) {
	b := NewLeastLoadBalancer()
	newTestPool(b, 2)

	assignment := b.Assign(0, requests(4))
	assert.Len(t, assignment[0], 2)
	assert.Len(t, assignment[1], 2)
}

func TestAssignmentCoversAllReplicas(t *testing.T) {
	for _, b := range []Balancer{NewRoundRobinBalancer(), NewLeastLoadBalancer()} {
		newTestPool(b, 4)
		assignment := b.Assign(0, nil)
		assert.Len(t, assignment, 4, b.Name())
	}
}

func TestNewBalancer(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{name: "", wantName: "RoundRobinBalancer"},
		{name: "round-robin", wantName: "RoundRobinBalancer"},
		{name: "least-load", wantName: "LeastLoadBalancer"},
		{name: "weighted", wantErr: true},
	}
	for _, tc := range tests {
		b, err := NewBalancer(tc.name)
		if tc.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.wantName, b.Name())
	}
}

func TestBalancerMetaInfo(t *testing.T) {
	b := NewRoundRobinBalancer()
	newTestPool(b, 2)

	meta := b.MetaInfo()
	assert.Equal(t, "RoundRobinBalancer", meta["name"])
	assert.Equal(t, 2, meta["num_replicas"])
}
