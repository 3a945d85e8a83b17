// Package script runs Lua behaviours as tasks.
//
// A behaviour is a Lua chunk run inside a Lua coroutine. The host
// functions suspend(), wait(seconds) and wait_until(name) yield back to Go,
// where each yield becomes a task the behaviour awaits:
//
//	while true do
//	  local x, y = random_point()
//	  while not move_toward(x, y) do
//	    suspend()
//	  end
//	  wait(0.5)
//	end
//
// Because a behaviour is a task.Runner it can be run by a manager, wrapped
// with CancelIf or used as an FSM state.
package script

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Engine holds compiled behaviours.
type Engine struct {
	protos map[string]*lua.FunctionProto
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the Lua log() function.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine with no scripts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		protos: make(map[string]*lua.FunctionProto),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load compiles src and stores it under name, replacing any earlier
// script of that name.
func (e *Engine) Load(name string, src io.Reader) error {
	chunk, err := parse.Parse(src, name)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", name, err)
	}
	e.protos[name] = proto
	return nil
}

// LoadString compiles src and stores it under name.
func (e *Engine) LoadString(name, src string) error {
	return e.Load(name, strings.NewReader(src))
}

// LoadFS loads every file in fsys matching pattern, keyed by base name.
func (e *Engine) LoadFS(fsys fs.FS, pattern string) error {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return fmt.Errorf("failed to match %s: %w", pattern, err)
	}
	for _, m := range matches {
		f, err := fsys.Open(m)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", m, err)
		}
		err = e.Load(path.Base(m), f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether a script named name is loaded.
func (e *Engine) Has(name string) bool {
	_, ok := e.protos[name]
	return ok
}

// Names returns the loaded script names in sorted order.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.protos))
	for name := range e.protos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newState creates a Lua state with only the safe standard libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
