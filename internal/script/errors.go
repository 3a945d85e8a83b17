package script

import "errors"

var (
	// ErrUnknownScript is returned for a script name that was never loaded.
	ErrUnknownScript = errors.New("unknown script")
	// ErrScriptFailed wraps a Lua runtime error raised by a behaviour.
	ErrScriptFailed = errors.New("script failed")
)
