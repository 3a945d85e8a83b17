package script

import (
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/samdwyer/corun/internal/task"
)

// Host is the object a behaviour controls.
type Host interface {
	// Position returns the host's position.
	Position() (x, y float64)
	// MoveToward takes one frame's step toward (x, y) and reports whether
	// the host arrived or cannot get closer.
	MoveToward(x, y float64) bool
	// RandomPoint returns a reachable point to wander to.
	RandomPoint() (x, y float64)
	// Condition returns the predicate named name for wait_until.
	Condition(name string) (func() bool, bool)
	// Now returns the time source wait() is measured on.
	Now() float64
}

// yield kinds passed from the Lua host functions to the Go driver.
const (
	yieldSuspend   = "suspend"
	yieldWait      = "wait"
	yieldWaitUntil = "wait_until"
)

// Behaviour returns a task that runs the script name against host. The
// task finishes with a nil result when the script returns, or with an
// error wrapping ErrScriptFailed when it raises one. Killing the task
// abandons the Lua coroutine and closes its state.
func (e *Engine) Behaviour(name string, host Host) (*task.Task[error], error) {
	proto, ok := e.protos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScript, name)
	}
	logger := e.logger.With("script", name)

	return task.New("Script "+name, func(co *task.Co) error {
		L := newState()
		defer L.Close()
		bindHost(L, host, logger)

		thread, cancel := L.NewThread()
		if cancel != nil {
			defer cancel()
		}
		fn := L.NewFunctionFromProto(proto)

		for {
			st, err, values := L.Resume(thread, fn)
			switch st {
			case lua.ResumeOK:
				return nil
			case lua.ResumeError:
				logger.Error("script failed", "error", err)
				return fmt.Errorf("%w: %s: %v", ErrScriptFailed, name, err)
			}
			w, err := waitFor(values, host)
			if err != nil {
				logger.Error("script failed", "error", err)
				return fmt.Errorf("%w: %s: %v", ErrScriptFailed, name, err)
			}
			co.Await(w)
		}
	}), nil
}

// waitFor turns the values yielded by a host function into a task.
func waitFor(values []lua.LValue, host Host) (task.Runner, error) {
	if len(values) == 0 {
		return task.Suspend(), nil
	}
	switch kind := values[0].String(); kind {
	case yieldSuspend:
		return task.Suspend(), nil
	case yieldWait:
		seconds := 0.0
		if len(values) > 1 {
			if n, ok := values[1].(lua.LNumber); ok {
				seconds = float64(n)
			}
		}
		return task.WaitSeconds(seconds, host.Now), nil
	case yieldWaitUntil:
		name := ""
		if len(values) > 1 {
			name = values[1].String()
		}
		pred, ok := host.Condition(name)
		if !ok {
			return nil, fmt.Errorf("unknown condition %q", name)
		}
		return task.WaitUntil(pred), nil
	default:
		return nil, fmt.Errorf("coroutine.yield(%q) is not a host wait", kind)
	}
}

func bindHost(L *lua.LState, host Host, logger *slog.Logger) {
	L.SetGlobal("suspend", L.NewFunction(func(L *lua.LState) int {
		return L.Yield(lua.LString(yieldSuspend))
	}))
	L.SetGlobal("wait", L.NewFunction(func(L *lua.LState) int {
		seconds := L.CheckNumber(1)
		return L.Yield(lua.LString(yieldWait), seconds)
	}))
	L.SetGlobal("wait_until", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if _, ok := host.Condition(name); !ok {
			L.ArgError(1, "unknown condition "+name)
			return 0
		}
		return L.Yield(lua.LString(yieldWaitUntil), lua.LString(name))
	}))
	L.SetGlobal("position", L.NewFunction(func(L *lua.LState) int {
		x, y := host.Position()
		L.Push(lua.LNumber(x))
		L.Push(lua.LNumber(y))
		return 2
	}))
	L.SetGlobal("random_point", L.NewFunction(func(L *lua.LState) int {
		x, y := host.RandomPoint()
		L.Push(lua.LNumber(x))
		L.Push(lua.LNumber(y))
		return 2
	}))
	L.SetGlobal("move_toward", L.NewFunction(func(L *lua.LState) int {
		x := L.CheckNumber(1)
		y := L.CheckNumber(2)
		L.Push(lua.LBool(host.MoveToward(float64(x), float64(y))))
		return 1
	}))
	L.SetGlobal("now", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(host.Now()))
		return 1
	}))
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		logger.Info(L.CheckString(1))
		return 0
	}))
}
