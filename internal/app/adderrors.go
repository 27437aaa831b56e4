package app

import (
	"errors"
	"strings"
	"time"

	"github.com/rkost/transmission/internal/metrics"
	"github.com/rkost/transmission/internal/session"
	"github.com/rkost/transmission/internal/ui"
)

const addErrorFlushDelay = time.Second

// addFiles adds a batch of .torrent files, collecting failures for a
// single combined report instead of a dialog per file.
func (a *App) addFiles(paths []string) {
	for _, path := range paths {
		if _, err := a.engine.AddFile(path); err != nil {
			a.reportAddError(err)
		}
	}
}

// reportAddError classifies an add failure and queues it for the
// batched dialog. Unrecognized errors surface immediately.
func (a *App) reportAddError(err error) {
	switch {
	case errors.Is(err, session.ErrCorruptTorrent):
		metrics.AddErrorsTotal.WithLabelValues("corrupt").Inc()
		a.queueAddError(&a.addErrs.corrupt, errorDetail(err, session.ErrCorruptTorrent))
	case errors.Is(err, session.ErrDuplicateTorrent):
		metrics.AddErrorsTotal.WithLabelValues("duplicate").Inc()
		a.queueAddError(&a.addErrs.duplicates, errorDetail(err, session.ErrDuplicateTorrent))
	default:
		metrics.AddErrorsTotal.WithLabelValues("other").Inc()
		a.log.Error("add torrent", "error", err)
		message := err.Error()
		go func() {
			_, _ = a.front().ShowDialog(ui.DialogError, "Couldn't add torrent", message, []string{"Close"})
		}()
	}
}

// errorDetail strips the sentinel prefix, leaving the name or path
// the session attached.
func errorDetail(err, sentinel error) string {
	detail := strings.TrimPrefix(err.Error(), sentinel.Error())
	detail = strings.TrimLeft(detail, ": ")
	if detail == "" {
		return err.Error()
	}
	return detail
}

func (a *App) queueAddError(bucket *[]string, detail string) {
	a.addErrs.Lock()
	*bucket = append(*bucket, detail)
	scheduled := a.addErrs.scheduled
	a.addErrs.scheduled = true
	a.addErrs.Unlock()

	if !scheduled {
		time.AfterFunc(addErrorFlushDelay, func() {
			a.loop.Post(a.flushAddErrors)
		})
	}
}

// flushAddErrors shows at most two dialogs: one listing the corrupt
// files, one listing the duplicates. Runs on the dispatch loop.
func (a *App) flushAddErrors() {
	a.addErrs.Lock()
	corrupt := a.addErrs.corrupt
	duplicates := a.addErrs.duplicates
	a.addErrs.corrupt = nil
	a.addErrs.duplicates = nil
	a.addErrs.scheduled = false
	a.addErrs.Unlock()

	if len(corrupt) > 0 {
		a.showAddErrorDialog("Couldn't add corrupt torrent", "Couldn't add corrupt torrents", corrupt)
	}
	if len(duplicates) > 0 {
		a.showAddErrorDialog("Couldn't add duplicate torrent", "Couldn't add duplicate torrents", duplicates)
	}
}

func (a *App) showAddErrorDialog(singular, plural string, details []string) {
	title := singular
	if len(details) > 1 {
		title = plural
	}
	message := strings.Join(details, "\n")
	go func() {
		_, _ = a.front().ShowDialog(ui.DialogError, title, message, []string{"Close"})
	}()
}
