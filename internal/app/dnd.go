package app

import (
	"context"
	"strings"
)

// OnFilesDropped is bound to the runtime's file drop hook. Anything
// ending in .torrent is added; other files are ignored with a log
// line rather than an error dialog, since drops are often sloppy.
func (a *App) OnFilesDropped(paths []string) {
	var torrents []string
	for _, path := range paths {
		if strings.HasSuffix(strings.ToLower(path), ".torrent") {
			torrents = append(torrents, path)
		} else {
			a.log.Debug("ignoring dropped file", "path", path)
		}
	}
	if len(torrents) == 0 {
		return
	}
	a.loop.Post(func() { a.addFiles(torrents) })
}

// OnTextDropped is bound to the frontend for dropped or pasted text:
// magnet links, torrent URLs and file lists all arrive this way.
func (a *App) OnTextDropped(text string) {
	for _, loc := range extractLocations(text) {
		loc := loc
		go func() {
			if _, err := a.engine.AddURL(context.Background(), loc); err != nil {
				a.reportAddError(err)
			}
		}()
	}
}

// extractLocations pulls addable locations out of free-form dropped
// text: one per line, accepting magnet links, http(s) URLs, file://
// URLs and bare paths to .torrent files.
func extractLocations(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "magnet:"),
			strings.HasPrefix(line, "http://"),
			strings.HasPrefix(line, "https://"):
			out = append(out, line)
		case strings.HasPrefix(line, "file://"):
			out = append(out, strings.TrimPrefix(line, "file://"))
		case strings.HasSuffix(strings.ToLower(line), ".torrent"):
			out = append(out, line)
		}
	}
	return out
}
