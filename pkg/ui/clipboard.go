package ui

import "github.com/atotto/clipboard"

// ClipboardWriter abstracts the system clipboard so tests can observe copies
type ClipboardWriter interface {
	WriteText(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}
