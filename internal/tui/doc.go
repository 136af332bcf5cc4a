// Package tui is a terminal front end for City Pulse. It draws the render
// view model (feed, map, report modal, toast) with bubbletea and lipgloss and
// forwards user input to the submission controller.
//
// Slow work (image encoding, location lookup, classification) runs in
// tea.Cmds so the program stays responsive while the controller's state
// machine decides what each result means. A successful submission is applied
// to the screen incrementally with render.Added and render.Apply.
package tui
