package output

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ColorsEnabled reports whether f is a terminal and NO_COLOR is unset.
func ColorsEnabled(f *os.File) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

const (
	reset = "\033[0m"
	dim   = "\033[2m"
	red   = "\033[31m"
	green = "\033[32m"
)

const (
	SymbolSuccess = "+"
	SymbolError   = "x"
	SymbolBullet  = "-"
)

func style(f *os.File, code, text string) string {
	if !ColorsEnabled(f) {
		return text
	}
	return code + text + reset
}

// Dim styles trace output written to stderr.
func Dim(text string) string {
	return style(os.Stderr, dim, text)
}

// PrintSuccess prints a success line to stdout.
func PrintSuccess(message string) {
	fmt.Println(style(os.Stdout, green, SymbolSuccess+" "+message))
}

// PrintError prints err to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, style(os.Stderr, red, SymbolError+" "+err.Error()))
}
