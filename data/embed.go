// Package data embeds the Lua behaviours and the sample configuration.
package data

import (
	"embed"
	"io/fs"
)

// ScriptPattern matches the embedded behaviours in Scripts.
const ScriptPattern = "scripts/*.lua"

//go:embed scripts/*.lua
var scriptFS embed.FS

// SampleConfig is a commented corun.toml with the default settings.
//
//go:embed corun.toml
var SampleConfig []byte

// Scripts returns the embedded filesystem containing the Lua behaviours.
func Scripts() fs.FS {
	return scriptFS
}
