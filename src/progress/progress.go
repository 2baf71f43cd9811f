// Package progress renders the single-line, self-overwriting blob progress display.
//
// Workers never touch display state directly: they send events to a Tracker,
// whose own goroutine is the only writer.
package progress

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Reporter writes progress lines to a console.
type Reporter struct {
	w     io.Writer
	width int
}

// New produces a Reporter writing to w.
// When w is a terminal, lines are cut to its width.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w, width: termWidth(w)}
}

type event struct {
	name     string
	finished bool
}

// Tracker follows the blobs of one container.
type Tracker struct {
	r      *Reporter
	total  int
	events chan event
	done   chan struct{}

	aborted bool

	// owned by run
	completed int
	longest   int
}

// Start begins tracking total blobs.
func (r *Reporter) Start(total int) *Tracker {
	t := &Tracker{
		r:      r,
		total:  total,
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// Started records that the named blob is being copied.
func (t *Tracker) Started(name string) {
	t.events <- event{name: name}
}

// Completed records that one blob has finished.
func (t *Tracker) Completed() {
	t.events <- event{finished: true}
}

// Close waits for pending events and writes the final 100% line.
// Started and Completed must not be called after Close.
func (t *Tracker) Close() {
	close(t.events)
	<-t.done
}

// Abort waits for pending events like Close, but leaves the last progress line
// as it was, so a failed container never shows as complete.
func (t *Tracker) Abort() {
	t.aborted = true
	t.Close()
}

func (t *Tracker) run() {
	defer close(t.done)
	for ev := range t.events {
		if ev.finished {
			t.completed++
			continue
		}
		t.render(ev.name)
	}
	if t.aborted {
		return
	}
	t.line(fmt.Sprintf("%d/%d (100%%) %s", t.total, t.total, strings.Repeat(" ", t.longest)))
}

func (t *Tracker) render(name string) {
	n := utf8.RuneCountInString(name)
	if n > t.longest {
		t.longest = n
	}
	i := t.completed + 1
	if i > t.total {
		i = t.total
	}
	pct := 100
	if t.total > 0 {
		pct = i * 100 / t.total
	}
	t.line(fmt.Sprintf("%d/%d (%d%%) %s%s", i, t.total, pct, name, strings.Repeat(" ", t.longest-n)))
}

func (t *Tracker) line(s string) {
	if w := t.r.width; w > 0 && utf8.RuneCountInString(s) >= w {
		s = string([]rune(s)[:w-1])
	}
	fmt.Fprint(t.r.w, "\r"+s)
}
