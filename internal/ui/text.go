package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter styles one kind of terminal text. With color disabled it
// falls back to the plain-text marks in pre and post.
type Formatter struct {
	color *color.Color
	pre   string
	post  string
}

func newFormatter(pre, post string, attrs ...color.Attribute) Formatter {
	return Formatter{color: color.New(attrs...), pre: pre, post: post}
}

func (f Formatter) style(text string) string {
	if colorDisabled() {
		return f.pre + text + f.post
	}
	return f.color.Sprint(text)
}

// Sprint styles the default formatting of a.
func (f Formatter) Sprint(a ...any) string {
	return f.style(fmt.Sprint(a...))
}

// Sprintf styles the formatted string.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.style(fmt.Sprintf(format, a...))
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// colorDisabled honors NO_COLOR even when it is set to an empty value.
func colorDisabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return color.NoColor
}

var (
	Code      = newFormatter("`", "`", color.FgYellow) // commands to run
	Path      = newFormatter("", "", color.FgYellow)
	Highlight = newFormatter("'", "'", color.FgCyan) // record names
	Secret    = newFormatter("", "", color.FgHiWhite, color.Bold)
	Muted     = newFormatter("(", ")", color.FgHiBlack)

	Success = newFormatter("", "", color.FgGreen)
	Warning = newFormatter("", "", color.FgYellow)
	Error   = newFormatter("", "", color.FgRed)
	Info    = newFormatter("", "", color.FgCyan)
)
