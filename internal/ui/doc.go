// Package ui contains the Fyne desktop window. It talks only to
// appstate.State: user actions become facade calls, and item updates coming
// back through the facade callback are applied on the UI goroutine with fyne.Do.
package ui
