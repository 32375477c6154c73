// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// errReported marks a failure that was already shown to the user, so
// Execute only sets the exit code.
var errReported = errors.New("failure already reported")

// spinnerFrames are braille frames similar to the docker CLI.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startInlineSpinner animates frames followed by text on the current line
// until the returned function is called, which also clears the line.
func startInlineSpinner(w io.Writer, text string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", utf8.RuneCountInString(text)+2))
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], text)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// progressView keeps one live status line while an operation runs. Lines
// are padded to the widest one shown so a shorter status does not leave
// remnants of a longer one.
type progressView struct {
	mu     sync.Mutex
	area   *pterm.AreaPrinter
	title  string
	status string
	frame  int
	maxLen int
	last   string
	stop   chan struct{}
	wg     sync.WaitGroup
}

// startProgress opens the live area. When live is false each status is
// printed on its own line instead, which keeps verbose logs readable.
func startProgress(title string, live bool) *progressView {
	p := &progressView{title: title, stop: make(chan struct{})}
	if !live {
		pterm.Info.Println(title)
		return p
	}

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		pterm.Info.Println(title)
		return p
	}
	p.area = area
	p.render()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.mu.Lock()
				p.frame++
				p.render()
				p.mu.Unlock()
			case <-p.stop:
				return
			}
		}
	}()
	return p
}

// Update replaces the status line.
func (p *progressView) Update(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
	if p.area == nil {
		pterm.Println("  " + status)
		return
	}
	p.render()
}

// render redraws the area. Callers hold p.mu or own p exclusively.
func (p *progressView) render() {
	if p.area == nil {
		return
	}
	line := spinnerFrames[p.frame%len(spinnerFrames)] + " " + p.title
	if p.status != "" {
		line += " · " + p.status
	}
	n := utf8.RuneCountInString(line)
	if n > p.maxLen {
		p.maxLen = n
	}
	if pad := p.maxLen - n; pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	if line == p.last {
		return
	}
	p.last = line
	p.area.Update(line)
}

// Stop removes the area and restores the cursor.
func (p *progressView) Stop() {
	if p.area == nil {
		return
	}
	close(p.stop)
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.area.Stop()
	p.area = nil
	cursor.Show()
}

// showResultBox prints message in a box titled ok or failed.
func showResultBox(success bool, okTitle, failTitle, message string) {
	title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint(okTitle)
	if !success {
		title = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(failTitle)
	}
	pterm.Println()
	pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Println(message)
	pterm.Println()
}
