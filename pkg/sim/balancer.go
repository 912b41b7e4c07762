package sim

import "github.com/rotisserie/eris"

// Balancer assigns each tick's new requests to the registered replicas.
// Assign returns one slice per replica, in registration order, covering
// every registered replica (possibly with an empty slice).
type Balancer interface {
	Name() string
	Register(replica Replica)
	Replicas() []Replica
	Assign(tick int, incoming []*Request) [][]*Request
	Info() map[string]any
	MetaInfo() map[string]any
}

type balancerBase struct {
	name     string
	replicas []Replica
}

func (b *balancerBase) Name() string {
	return b.name
}

func (b *balancerBase) Register(replica Replica) {
	b.replicas = append(b.replicas, replica)
}

func (b *balancerBase) Replicas() []Replica {
	return b.replicas
}

func (b *balancerBase) emptyAssignment() [][]*Request {
	return make([][]*Request, len(b.replicas))
}

func (b *balancerBase) Info() map[string]any {
	infos := make([]map[string]any, len(b.replicas))
	for i, replica := range b.replicas {
		infos[i] = replica.Info()
	}
	return map[string]any{"replicas": infos}
}

func (b *balancerBase) MetaInfo() map[string]any {
	metas := make([]map[string]any, len(b.replicas))
	for i, replica := range b.replicas {
		metas[i] = replica.MetaInfo()
	}
	return map[string]any{
		"name":         b.name,
		"num_replicas": len(b.replicas),
		"replicas":     metas,
	}
}

// RoundRobinBalancer hands requests to replicas in rotation, remembering its
// position across ticks.
type RoundRobinBalancer struct {
	balancerBase
	idx int
}

func NewRoundRobinBalancer() *RoundRobinBalancer {
	return &RoundRobinBalancer{balancerBase: balancerBase{name: "RoundRobinBalancer"}}
}

func (b *RoundRobinBalancer) Assign(tick int, incoming []*Request) [][]*Request {
	assignment := b.emptyAssignment()
	for _, req := range incoming {
		assignment[b.idx] = append(assignment[b.idx], req)
		b.idx = (b.idx + 1) % len(b.replicas)
	}
	return assignment
}

func (b *RoundRobinBalancer) Info() map[string]any {
	info := b.balancerBase.Info()
	info["idx"] = b.idx
	return info
}

// LeastLoadBalancer sends each request to the replica with the shortest
// queue, counting requests already assigned during the same tick.
type LeastLoadBalancer struct {
	balancerBase
}

func NewLeastLoadBalancer() *LeastLoadBalancer {
	return &LeastLoadBalancer{balancerBase: balancerBase{name: "LeastLoadBalancer"}}
}

func (b *LeastLoadBalancer) Assign(tick int, incoming []*Request) [][]*Request {
	assignment := b.emptyAssignment()
	for _, req := range incoming {
		sel := 0
		selLoad := -1
		for i, replica := range b.replicas {
			load := replica.QueueLen() + len(assignment[i])
			if selLoad < 0 || load < selLoad {
				sel = i
				selLoad = load
			}
		}
		assignment[sel] = append(assignment[sel], req)
	}
	return assignment
}

// NewBalancer builds a balancer by its scenario name. An empty name selects
// the round-robin policy.
func NewBalancer(name string) (Balancer, error) {
	switch name {
	case "", "round-robin":
		return NewRoundRobinBalancer(), nil
	case "least-load":
		return NewLeastLoadBalancer(), nil
	default:
		return nil, eris.Errorf("unknown load balancer type %q", name)
	}
}
