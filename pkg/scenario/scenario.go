// Package scenario loads simulation scenarios from YAML files and builds the
// typed clients, balancer and replicas they describe.
package scenario

import (
	"math/rand"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cblmemo/HeterogeneousLBSimulator/pkg/sim"
)

type Scenario struct {
	Simulation struct {
		OutputPath string `yaml:"output_path"`
		MaxTick    int    `yaml:"max_tick"`
		Seed       int64  `yaml:"seed"`
		Progress   *bool  `yaml:"progress"`
	} `yaml:"simulation"`
	Clients      []ClientSpec  `yaml:"clients"`
	LoadBalancer BalancerSpec  `yaml:"load_balancer"`
	Replicas     []ReplicaSpec `yaml:"replicas"`
}

type ClientSpec struct {
	Type     string  `yaml:"type"`
	Location string  `yaml:"location"`
	// DeadlineSeconds is converted to ticks with the tick period.
	DeadlineSeconds float64 `yaml:"deadline_seconds"`
	PeriodTicks     int     `yaml:"period_tick"`

	Workloads     []int   `yaml:"workloads"`
	Candidates    []int   `yaml:"workload_candidates"`
	Prob          float64 `yaml:"prob"`
	Workload      int     `yaml:"workload"`
	DayProb       float64 `yaml:"day_prob"`
	NightProb     float64 `yaml:"night_prob"`
	DayTicks      int     `yaml:"day_tick"`
	NightTicks    int     `yaml:"night_tick"`
	NumReq        int     `yaml:"num_req"`
	BurstSize     int     `yaml:"burst_size"`
	BurstInterval int     `yaml:"burst_interval"`
	Script        string  `yaml:"script"`
}

type BalancerSpec struct {
	Type string `yaml:"type"`
}

type ReplicaSpec struct {
	Type        string `yaml:"type"`
	Location    string `yaml:"location"`
	Accelerator string `yaml:"accelerator"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "could not open scenario %s", path)
	}

	var sc Scenario
	if err = yaml.Unmarshal(data, &sc); err != nil {
		return nil, eris.Wrapf(err, "failed to parse scenario %s", path)
	}

	if len(sc.Clients) == 0 {
		return nil, eris.New("at least one client configuration is required")
	}
	if len(sc.Replicas) == 0 {
		return nil, eris.New("at least one replica configuration is required")
	}
	if sc.Simulation.OutputPath == "" {
		return nil, eris.New("an output path is required in the simulation settings")
	}
	if sc.Simulation.MaxTick == 0 {
		sc.Simulation.MaxTick = 1000
	}
	return &sc, nil
}

// Build turns the scenario into runnable simulation pieces.
func (sc *Scenario) Build(logger *zerolog.Logger) ([]sim.Client, sim.Balancer, []sim.Replica, sim.Options, error) {
	seed := sc.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	clients := make([]sim.Client, 0, len(sc.Clients))
	for i, spec := range sc.Clients {
		client, err := buildClient(spec, rng, logger)
		if err != nil {
			return nil, nil, nil, sim.Options{}, eris.Wrapf(err, "invalid client #%d", i)
		}
		clients = append(clients, client)
	}

	balancer, err := sim.NewBalancer(sc.LoadBalancer.Type)
	if err != nil {
		return nil, nil, nil, sim.Options{}, err
	}

	replicas := make([]sim.Replica, 0, len(sc.Replicas))
	for i, spec := range sc.Replicas {
		replica, err := buildReplica(spec)
		if err != nil {
			return nil, nil, nil, sim.Options{}, eris.Wrapf(err, "invalid replica #%d", i)
		}
		replicas = append(replicas, replica)
	}

	opts := sim.Options{
		OutputPath: sc.Simulation.OutputPath,
		MaxTick:    sc.Simulation.MaxTick,
		Progress:   sc.Simulation.Progress == nil || *sc.Simulation.Progress,
	}
	return clients, balancer, replicas, opts, nil
}

func parseRegion(name string) (sim.Region, error) {
	switch name {
	case "US", "us":
		return sim.RegionUS, nil
	case "ASIA", "asia":
		return sim.RegionAsia, nil
	default:
		return "", eris.Errorf("unknown region %q", name)
	}
}

func parseAccelerator(name string) (sim.Accelerator, error) {
	switch name {
	case "A100":
		return sim.AcceleratorA100, nil
	case "T4":
		return sim.AcceleratorT4, nil
	default:
		return "", eris.Errorf("unknown accelerator %q", name)
	}
}

func buildClient(spec ClientSpec, rng *rand.Rand, logger *zerolog.Logger) (sim.Client, error) {
	region, err := parseRegion(spec.Location)
	if err != nil {
		return nil, err
	}
	deadline := sim.DurationToTicks(time.Duration(spec.DeadlineSeconds * float64(time.Second)))

	switch spec.Type {
	case "fixed":
		sequence := make([]*sim.Request, len(spec.Workloads))
		for i, workload := range spec.Workloads {
			// A zero workload is a hole in the sequence: skip that slot.
			if workload > 0 {
				sequence[i] = sim.NewRequest(workload)
			}
		}
		return sim.NewFixedClient(sequence, region, deadline, spec.PeriodTicks), nil
	case "random-choice":
		if len(spec.Candidates) == 0 {
			return nil, eris.New("random-choice clients need workload_candidates")
		}
		return sim.NewRandomChoiceClient(spec.Candidates, rng, region, deadline, spec.PeriodTicks), nil
	case "random-send":
		return sim.NewRandomSendClient(spec.Prob, spec.Workload, rng, region, deadline, spec.PeriodTicks), nil
	case "day-night":
		if spec.DayTicks <= 0 || spec.NightTicks <= 0 {
			return nil, eris.New("day-night clients need positive day_tick and night_tick")
		}
		numReq := spec.NumReq
		if numReq == 0 {
			numReq = 1
		}
		return sim.NewDayNightClient(spec.DayProb, spec.NightProb, spec.Workload,
			spec.DayTicks, spec.NightTicks, numReq, rng, region, deadline, spec.PeriodTicks), nil
	case "burst":
		if spec.BurstSize <= 0 {
			return nil, eris.New("burst clients need a positive burst_size")
		}
		return sim.NewBurstClient(spec.BurstSize, spec.BurstInterval, spec.Workload, region, deadline, spec.PeriodTicks), nil
	case "script":
		if spec.Script == "" {
			return nil, eris.New("script clients need a script path")
		}
		return sim.NewScriptClient(spec.Script, logger, region, deadline, spec.PeriodTicks)
	default:
		return nil, eris.Errorf("unknown client type %q", spec.Type)
	}
}

func buildReplica(spec ReplicaSpec) (sim.Replica, error) {
	region, err := parseRegion(spec.Location)
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case "", "accelerator":
		accelerator, err := parseAccelerator(spec.Accelerator)
		if err != nil {
			return nil, err
		}
		return sim.NewAcceleratorReplica(region, accelerator), nil
	default:
		return nil, eris.Errorf("unknown replica type %q", spec.Type)
	}
}
