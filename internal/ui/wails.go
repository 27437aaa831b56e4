package ui

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// WailsFrontend drives the desktop runtime. One is created at startup
// and bound to the runtime context handed to the startup hook.
type WailsFrontend struct {
	ctx context.Context
}

var _ Frontend = (*WailsFrontend)(nil)

func NewWailsFrontend(ctx context.Context) *WailsFrontend {
	return &WailsFrontend{ctx: ctx}
}

func (w *WailsFrontend) ShowWindow() { runtime.WindowShow(w.ctx) }
func (w *WailsFrontend) HideWindow() { runtime.WindowHide(w.ctx) }
func (w *WailsFrontend) Quit()       { runtime.Quit(w.ctx) }

func (w *WailsFrontend) EmitEvent(name string, payload any) {
	runtime.EventsEmit(w.ctx, name, payload)
}

func (w *WailsFrontend) ShowDialog(kind DialogKind, title, message string, buttons []string) (string, error) {
	return runtime.MessageDialog(w.ctx, runtime.MessageDialogOptions{
		Type:    dialogType(kind),
		Title:   title,
		Message: message,
		Buttons: buttons,
	})
}

func dialogType(kind DialogKind) runtime.DialogType {
	switch kind {
	case DialogInfo:
		return runtime.InfoDialog
	case DialogWarning:
		return runtime.WarningDialog
	case DialogError:
		return runtime.ErrorDialog
	case DialogQuestion:
		return runtime.QuestionDialog
	default:
		return runtime.InfoDialog
	}
}

func (w *WailsFrontend) ChooseTorrentFiles() ([]string, error) {
	return runtime.OpenMultipleFilesDialog(w.ctx, runtime.OpenDialogOptions{
		Title: "Open Torrent",
		Filters: []runtime.FileFilter{
			{DisplayName: "Torrent files (*.torrent)", Pattern: "*.torrent"},
			{DisplayName: "All files", Pattern: "*"},
		},
	})
}

func (w *WailsFrontend) ChooseDirectory(title, defaultDir string) (string, error) {
	return runtime.OpenDirectoryDialog(w.ctx, runtime.OpenDialogOptions{
		Title:            title,
		DefaultDirectory: defaultDir,
	})
}

func (w *WailsFrontend) SetClipboard(text string) error {
	return runtime.ClipboardSetText(w.ctx, text)
}

func (w *WailsFrontend) OpenURL(url string) {
	runtime.BrowserOpenURL(w.ctx, url)
}

func (w *WailsFrontend) WindowGeometry() (int, int, bool) {
	width, height := runtime.WindowGetSize(w.ctx)
	return width, height, runtime.WindowIsMaximised(w.ctx)
}
