// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal wraps the few raw terminal operations the prompts need.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const defaultWidth = 80

// Width returns the stdout terminal width, or 80 when it is not a terminal.
func Width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// linesFor returns how many rows a prompt plus its answer occupied, counting
// the empty row left after Enter.
func linesFor(textLength, width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	n := (textLength + width - 1) / width
	if n < 1 {
		n = 1
	}
	return n + 1
}

// ClearPreviousLines erases an answered prompt of textLength characters from w.
func ClearPreviousLines(w io.Writer, textLength int) {
	n := linesFor(textLength, Width())
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
