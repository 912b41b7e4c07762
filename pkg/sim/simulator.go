// Package sim implements a tick-based simulator for load-balancing policies
// over heterogeneous replicas. Clients emit requests each tick, a balancer
// assigns them to replicas and every replica burns its per-tick compute
// budget on its queue. Each run writes a JSONL trace that pkg/report can
// summarize afterwards.
package sim

import (
	"context"
	"os"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// Options control a single simulation run.
type Options struct {
	// OutputPath is where the JSONL trace goes. A .xz suffix enables
	// on-the-fly compression.
	OutputPath string
	MaxTick    int
	Progress   bool
}

type Simulator struct {
	clock    *Clock
	clients  []Client
	balancer Balancer
	opts     Options
	logger   *zerolog.Logger
}

func New(clients []Client, balancer Balancer, replicas []Replica, opts Options, logger *zerolog.Logger) (*Simulator, error) {
	if opts.OutputPath == "" {
		return nil, eris.New("an output path is required")
	}
	if opts.MaxTick <= 0 {
		return nil, eris.New("max tick must be positive")
	}
	if len(clients) == 0 {
		return nil, eris.New("at least one client is required")
	}
	if len(replicas) == 0 {
		return nil, eris.New("at least one replica is required")
	}

	for _, replica := range replicas {
		balancer.Register(replica)
	}

	return &Simulator{
		clock:    NewClock(),
		clients:  clients,
		balancer: balancer,
		opts:     opts,
		logger:   logger,
	}, nil
}

type finishedRecord struct {
	ID      uint64 `json:"id"`
	Latency int    `json:"latency"`
	Expired bool   `json:"expired"`
}

// Run executes the tick loop until MaxTick and writes the trace. The context
// is checked once per tick so a run can be interrupted cleanly.
func (s *Simulator) Run(ctx context.Context) error {
	trace, err := newTraceWriter(s.opts.OutputPath)
	if err != nil {
		return err
	}
	defer trace.Close()
	// the deferred Close only covers early error returns; the success path
	// closes explicitly below so flush failures are reported

	runID, err := nanoid.Generate(nanoid.DefaultAlphabet, 16)
	if err != nil {
		return eris.Wrap(err, "failed to generate run ID")
	}

	clientMetas := make([]map[string]any, len(s.clients))
	for i, client := range s.clients {
		clientMetas[i] = client.MetaInfo()
	}
	err = trace.WriteLine(map[string]any{
		"type":    "meta_info",
		"run_id":  runID,
		"clients": clientMetas,
		"lb":      s.balancer.MetaInfo(),
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("run", runID).
		Str("policy", s.balancer.Name()).
		Int("max_tick", s.opts.MaxTick).
		Msg("starting simulation")

	bar := s.progressBar()
	replicas := s.balancer.Replicas()

	for {
		if err = ctx.Err(); err != nil {
			return eris.Wrap(err, "simulation interrupted")
		}

		tick := s.clock.Step()

		var incoming []*Request
		for _, client := range s.clients {
			incoming = append(incoming, client.Observe(tick)...)
		}

		assignment := s.balancer.Assign(tick, incoming)

		var finished []finishedRecord
		for i, replica := range replicas {
			for _, req := range replica.Step(tick, assignment[i]) {
				latency, _ := req.Latency()
				finished = append(finished, finishedRecord{ID: req.ID, Latency: latency, Expired: req.Expired})
			}
		}

		err = trace.WriteLine(map[string]any{
			"type":     "tick_info",
			"tick":     tick,
			"finished": finished,
			"lb_info":  s.balancer.Info(),
		})
		if err != nil {
			return err
		}

		newMetas := make([]map[string]any, len(incoming))
		for i, req := range incoming {
			newMetas[i] = req.MetaInfo()
		}
		err = trace.WriteLine(map[string]any{
			"type":        "meta_info",
			"new_traffic": newMetas,
		})
		if err != nil {
			return err
		}

		bar.Add(1)
		if tick >= s.opts.MaxTick {
			break
		}
	}

	if err = trace.Close(); err != nil {
		return err
	}

	s.logger.Info().Str("run", runID).Str("path", s.opts.OutputPath).Msg("trace written")
	return nil
}

func (s *Simulator) progressBar() *progressbar.ProgressBar {
	// the loop runs ticks 0 through MaxTick inclusive
	total := s.opts.MaxTick + 1
	if !s.opts.Progress || os.Getenv("CI") == "true" {
		return progressbar.NewOptions(total, progressbar.OptionSetVisibility(false))
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(s.balancer.Name()),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
