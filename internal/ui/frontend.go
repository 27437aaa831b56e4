package ui

// DialogKind selects the icon and severity of a message dialog.
type DialogKind int

const (
	DialogInfo DialogKind = iota
	DialogWarning
	DialogError
	DialogQuestion
)

// Frontend is the surface the shell drives. The production
// implementation talks to the desktop runtime; tests substitute a
// recording fake.
type Frontend interface {
	// ShowWindow raises the main window, creating it if hidden.
	ShowWindow()
	// HideWindow hides the main window without quitting.
	HideWindow()
	// Quit asks the runtime to tear the window down. The shell's
	// close interception decides whether that is allowed yet.
	Quit()

	// EmitEvent pushes a named payload to the frontend layer.
	EmitEvent(name string, payload any)

	// ShowDialog presents a modal message. Buttons are label
	// strings; the returned string is the label picked, empty on
	// dismissal.
	ShowDialog(kind DialogKind, title, message string, buttons []string) (string, error)

	// ChooseTorrentFiles asks the user for one or more .torrent
	// files. A nil slice means cancelled.
	ChooseTorrentFiles() ([]string, error)
	// ChooseDirectory asks the user for a directory.
	ChooseDirectory(title, defaultDir string) (string, error)

	// SetClipboard replaces the system clipboard text.
	SetClipboard(text string) error
	// OpenURL opens a link in the user's browser.
	OpenURL(url string)

	// WindowGeometry reports the current main window size and
	// whether it is maximized, for persisting across runs.
	WindowGeometry() (width, height int, maximized bool)
}
