// Package client embeds the browser script that drives live tab panels.
package client

import (
	"embed"
	"io/fs"
	"net/http"
)

// ScriptName is the file name of the live client script.
const ScriptName = "tabkit.js"

//go:embed src/*.js
var assets embed.FS

// Assets returns the embedded filesystem containing JavaScript files.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "src")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler serves the embedded assets.
func Handler() http.Handler {
	return http.FileServer(http.FS(Assets()))
}
