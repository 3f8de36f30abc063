// Package gui shows inspection report in a native, read-only window
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ShowReport blocks until window is closed
func ShowReport(title string, text string) {
	a := app.New()
	w := a.NewWindow(title)

	label := widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})
	w.SetContent(container.NewVScroll(label))
	w.Resize(fyne.NewSize(480, 720))
	w.ShowAndRun()
}
