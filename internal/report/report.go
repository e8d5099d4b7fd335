// Package report writes trace blocks and macro-topic results for people to read,
// either to a console or appended to log files in an output directory.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matsen/topictrace/internal/topic"
	"github.com/matsen/topictrace/internal/trace"
)

// Mode selects where trace blocks go.
type Mode string

// Output modes.
const (
	ModeEmit    Mode = "emit"
	ModePersist Mode = "persist"
	ModeSilent  Mode = "silent"
)

// ValidModes lists the accepted output modes.
var ValidModes = []Mode{ModeEmit, ModePersist, ModeSilent}

// ParseMode parses an output mode name.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range ValidModes {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid output mode %q (valid: %v)", s, ValidModes)
}

// Reporter is a trace.Reporter that holds resources until closed.
type Reporter interface {
	trace.Reporter
	io.Closer
}

// Options locate and name the files written in persist mode.
type Options struct {
	Dir       string
	K         int
	Threshold float64
}

// New returns the Reporter for a mode. Emit writes to w.
func New(mode Mode, w io.Writer, opts Options) (Reporter, error) {
	switch mode {
	case ModeEmit:
		return NewConsole(w), nil
	case ModePersist:
		f, err := OpenFile(opts.Dir, opts.K, opts.Threshold)
		if err != nil {
			return nil, err
		}
		return f, nil
	case ModeSilent:
		return Silent{}, nil
	default:
		return nil, fmt.Errorf("invalid output mode %q (valid: %v)", mode, ValidModes)
	}
}

// Silent discards every block.
type Silent struct{}

func (Silent) Report(trace.Block) error { return nil }
func (Silent) Close() error             { return nil }

// Catppuccin accents, matching the rest of the terminal output.
var (
	sapphire = lipgloss.Color("#74c7ec")
	green    = lipgloss.Color("#a6e3a1")
	peach    = lipgloss.Color("#fab387")
	subtext  = lipgloss.Color("#a6adc8")
)

type styles struct {
	title lipgloss.Style
	year  lipgloss.Style
	macro lipgloss.Style
	muted lipgloss.Style
}

// newStyles binds the styles to w, so colour is dropped unless w is a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Foreground(sapphire).Bold(true),
		year:  r.NewStyle().Foreground(peach),
		macro: r.NewStyle().Foreground(green).Bold(true),
		muted: r.NewStyle().Foreground(subtext),
	}
}

const endMarker = "-- end of trace --"

// writeBlock renders one block:
//
//	target 2005: [a, b, c]
//	  2006  [b, c, d]
//	macro-topic: [a, b, c, d] (absorbed 2006)
//	-- end of trace --
func writeBlock(w io.Writer, st styles, b trace.Block) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s %s\n", st.title.Render(fmt.Sprintf("target %d:", b.Year)), b.Target)
	if len(b.Matches) == 0 {
		fmt.Fprintln(bw, st.muted.Render("  no topics traced"))
	}
	for _, m := range b.Matches {
		fmt.Fprintf(bw, "  %s  %s\n", st.year.Render(strconv.Itoa(m.Year)), m.Topic)
	}

	macro := fmt.Sprintf("macro-topic: %s", b.Macro.Keywords)
	if len(b.Macro.Absorbed) > 0 {
		macro += fmt.Sprintf(" (absorbed %s)", years(b.Macro.Absorbed))
	}
	fmt.Fprintln(bw, st.macro.Render(macro))
	fmt.Fprintf(bw, "%s\n\n", st.muted.Render(endMarker))

	return bw.Flush()
}

func years(ys []int) string {
	parts := make([]string, len(ys))
	for i, y := range ys {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

// Console writes blocks to a writer as they are traced.
type Console struct {
	w  io.Writer
	st styles
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, st: newStyles(w)}
}

func (c *Console) Report(b trace.Block) error {
	return writeBlock(c.w, c.st, b)
}

func (c *Console) Close() error { return nil }

// WriteMacroTopics writes the final macro-topic list.
func WriteMacroTopics(w io.Writer, macros []topic.MacroTopic, k int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "MACRO-TOPICS %d-%d (k=%d)\n", topic.FirstYear, topic.LastYear, k)
	fmt.Fprintf(bw, "count: %d\n\n", len(macros))
	for _, m := range macros {
		fmt.Fprintf(bw, "%s\n", m.Keywords)
		fmt.Fprintf(bw, "origin: %d  length: %d\n\n", m.Origin, m.Keywords.Len())
	}
	return bw.Flush()
}
