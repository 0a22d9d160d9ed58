// Package ninja lowers a target graph to a single build.ninja file.
//
// The line-oriented writer below is grounded on google-blueprint's
// ninja_writer.go, the only repo in the corpus that emits literal Ninja
// syntax: the same rule/build/variable primitives and `$`-continuation
// line wrapping, re-themed around core.Target/core.Toolchain instead of
// blueprint's ModuleGroup.
package ninja

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	indentWidth = 4
	lineWidth   = 120
)

var indentString = strings.Repeat(" ", indentWidth*2)

// A writer emits well-formed Ninja syntax to an underlying io.Writer,
// wrapping long build lines on `$\n` continuations the way ninja
// itself expects.
type writer struct {
	w                io.Writer
	justDidBlankLine bool
}

func newWriter(w io.Writer) *writer {
	return &writer{w: w}
}

func (n *writer) Comment(comment string) error {
	n.justDidBlankLine = false
	_, err := fmt.Fprintf(n.w, "# %s\n", comment)
	return err
}

func (n *writer) Rule(name string) error {
	n.justDidBlankLine = false
	_, err := fmt.Fprintf(n.w, "rule %s\n", name)
	return err
}

func (n *writer) ScopedAssign(name, value string) error {
	n.justDidBlankLine = false
	_, err := fmt.Fprintf(n.w, "%s%s = %s\n", indentString[:indentWidth], name, value)
	return err
}

func (n *writer) Assign(name, value string) error {
	n.justDidBlankLine = false
	_, err := fmt.Fprintf(n.w, "%s = %s\n", name, value)
	return err
}

// Build writes one `build` edge: outputs, the rule consuming them, and
// explicit/order-only dependencies, wrapping onto continuation lines once
// the line grows past lineWidth.
func (n *writer) Build(outputs []string, rule string, explicitDeps, orderOnlyDeps []string) error {
	n.justDidBlankLine = false

	wr := &wrappedWriter{writer: n, maxLineLen: lineWidth - len(" $")}
	wr.WriteString("build")
	for _, o := range outputs {
		wr.WriteStringWithSpace(o)
	}
	wr.WriteString(":")
	wr.WriteStringWithSpace(rule)
	for _, d := range explicitDeps {
		wr.WriteStringWithSpace(d)
	}
	if len(orderOnlyDeps) > 0 {
		wr.WriteStringWithSpace("||")
		for _, d := range orderOnlyDeps {
			wr.WriteStringWithSpace(d)
		}
	}
	return wr.Flush()
}

func (n *writer) BlankLine() error {
	if n.justDidBlankLine {
		return nil
	}
	n.justDidBlankLine = true
	_, err := io.WriteString(n.w, "\n")
	return err
}

type wrappedWriter struct {
	*writer
	maxLineLen int
	written    int
	err        error
}

func (w *wrappedWriter) writeString(s string, space bool) {
	if w.err != nil {
		return
	}
	spaceLen := 0
	if space {
		spaceLen = 1
	}
	if w.written+len(s)+spaceLen > w.maxLineLen {
		if _, w.err = io.WriteString(w.w, " $\n"); w.err != nil {
			return
		}
		if _, w.err = io.WriteString(w.w, indentString); w.err != nil {
			return
		}
		w.written = len(indentString)
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
	} else if space {
		if _, w.err = io.WriteString(w.w, " "); w.err != nil {
			return
		}
		w.written++
	}
	_, w.err = io.WriteString(w.w, s)
	w.written += len(s)
}

func (w *wrappedWriter) WriteString(s string)         { w.writeString(s, false) }
func (w *wrappedWriter) WriteStringWithSpace(s string) { w.writeString(s, true) }

func (w *wrappedWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	_, err := io.WriteString(w.w, "\n")
	return err
}
