// Package hook runs host-supplied Lua lifecycle hooks. A script may
// define on_activate(session_id, count) and on_abort(session_id); the
// host invokes them around session lifecycle events. Undefined hooks are
// skipped silently.
//
// The Lua state is sandboxed: only the base, table, string and math
// libraries are opened, and file or code loading from Lua is disabled.
// The state is not goroutine-safe; the runner serializes calls with a
// mutex but the single-threaded session protocol means contention never
// happens in practice.
package hook

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Hook function names looked up in the script.
const (
	activateHook = "on_activate"
	abortHook    = "on_abort"
)

// Runner owns one sandboxed Lua state with the loaded hook script.
type Runner struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// Load reads and evaluates the hook script at path.
func Load(path string) (*Runner, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hook script %s: %w", path, err)
	}
	return LoadString(string(src))
}

// LoadString evaluates a hook script given as source text.
func LoadString(src string) (*Runner, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("opening lua library %s: %w", lib.name, err)
		}
	}

	// No loading of further code or files from inside the sandbox.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("evaluating hook script: %w", err)
	}
	return &Runner{L: L}, nil
}

// OnActivate invokes on_activate(session_id, count) if the script
// defines it.
func (r *Runner) OnActivate(sessionID string, count int) error {
	return r.call(activateHook, lua.LString(sessionID), lua.LNumber(count))
}

// OnAbort invokes on_abort(session_id) if the script defines it.
func (r *Runner) OnAbort(sessionID string) error {
	return r.call(abortHook, lua.LString(sessionID))
}

// Close releases the Lua state. Further hook calls return ErrClosed.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

func (r *Runner) call(name string, args ...lua.LValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	fn := r.L.GetGlobal(name)
	if fn == lua.LNil {
		return nil
	}
	if err := r.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("hook %s: %w", name, err)
	}
	return nil
}
