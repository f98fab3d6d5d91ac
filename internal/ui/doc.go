// Package ui provides semantic text formatting for lockpass output.
//
//	ui.Code.Sprint("lockpass init")
//	ui.Highlight.Sprint("github")
//	ui.Success.Sprint("✓")
//
// Colors are disabled when NO_COLOR is set or the output is not a
// terminal; formatters then fall back to plain decorations.
package ui
