package sim

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.starlark.net/starlark"
)

// ScriptClient delegates its traffic pattern to a Starlark script. The
// script has to declare an observe(tick) function returning a list of
// workloads (ints); an empty list means no traffic this tick.
type ScriptClient struct {
	clientBase
	path    string
	logger  *zerolog.Logger
	thread  *starlark.Thread
	observe starlark.Callable
}

func NewScriptClient(path string, logger *zerolog.Logger, region Region, deadlineTicks, periodTicks int) (*ScriptClient, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read traffic script %s", path)
	}

	thread := &starlark.Thread{
		Name: path,
		Print: func(thread *starlark.Thread, msg string) {
			logger.Info().Str("script", thread.Name).Msg(msg)
		},
	}

	globals, err := starlark.ExecFile(thread, path, script, nil)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.Errorf("failed to execute %s:\n%s", path, evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed to execute %s", path)
	}

	observe, ok := globals["observe"]
	if !ok {
		return nil, eris.Errorf("%s did not declare an observe function", path)
	}

	observeFunc, ok := observe.(starlark.Callable)
	if !ok {
		return nil, eris.Errorf("%s declared an observe value but it's not a function", path)
	}

	return &ScriptClient{
		clientBase: newClientBase("ScriptClient", region, deadlineTicks, periodTicks),
		path:       path,
		logger:     logger,
		thread:     thread,
		observe:    observeFunc,
	}, nil
}

func (c *ScriptClient) Observe(tick int) []*Request {
	if !c.active(tick) {
		return nil
	}

	reqs, err := c.observeTick(tick)
	if err != nil {
		// A broken script shouldn't kill the whole run; log and emit nothing.
		c.logger.Warn().Err(err).Str("script", c.path).Int("tick", tick).Msg("traffic script failed")
		return nil
	}
	return c.stamp(tick, reqs)
}

func (c *ScriptClient) observeTick(tick int) ([]*Request, error) {
	result, err := starlark.Call(c.thread, c.observe, starlark.Tuple{starlark.MakeInt(tick)}, nil)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.New(evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "observe call failed in %s", c.path)
	}

	workloads, ok := result.(starlark.Indexable)
	if !ok {
		return nil, eris.Errorf("observe in %s returned %s, expected a list of ints", c.path, result.Type())
	}

	var reqs []*Request
	for i := 0; i < workloads.Len(); i++ {
		var workload int
		if err := starlark.AsInt(workloads.Index(i), &workload); err != nil {
			return nil, eris.Wrapf(err, "observe in %s returned a non-int workload", c.path)
		}
		reqs = append(reqs, NewRequest(workload))
	}
	return reqs, nil
}

func (c *ScriptClient) MetaInfo() map[string]any {
	meta := c.clientBase.MetaInfo()
	meta["script"] = c.path
	return meta
}
