package server

import (
	"embed"
	"io/fs"
	"net/http"
)

// The broker ships one stylesheet; everything under static/ is embedded so
// the server is a single binary with no separate asset deployment step.
//
//go:embed static/*
var staticFiles embed.FS

func FileServerHandler() http.Handler {
	return http.FileServer(http.FS(StaticFilesFS()))
}

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("failed to create static sub filesystem: " + err.Error())
	}
	return subFS
}
