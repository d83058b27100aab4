package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/termenv"
)

// Printer writes the interactive session transcript. Colours degrade to
// plain text when the writer is not a terminal.
type Printer struct {
	out *termenv.Output
}

// NewPrinter creates a printer over w. The colour profile is detected from
// w unless an option overrides it.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{out: termenv.NewOutput(w, opts...)}
}

// Banner announces the machine being run.
func (p *Printer) Banner(name, version string) {
	title := p.out.String(" choicefsm ").Bold().Foreground(p.out.Color("#818cf8"))
	fmt.Fprintf(p.out, "\n%s %s (v%s)\n", title, name, version)
	fmt.Fprintln(p.out, p.dim("events advance the machine; +flag / -flag set decision flags; ? lists flags; quit exits"))
	fmt.Fprintln(p.out)
}

// State prints the current state and the events it accepts.
func (p *Printer) State(id string, events []string) {
	name := p.out.String(id).Bold().Foreground(p.out.Color("#a78bfa"))
	fmt.Fprintf(p.out, "● %s", name)
	if len(events) > 0 {
		fmt.Fprintf(p.out, "  %s", p.dim("["+strings.Join(events, ", ")+"]"))
	}
	fmt.Fprintln(p.out)
}

// Unhandled reports an event the current state ignored.
func (p *Printer) Unhandled(event string) {
	msg := p.out.String(fmt.Sprintf("  %q ignored here", event)).Foreground(p.out.Color("#fbbf24"))
	fmt.Fprintln(p.out, msg)
}

// Flags lists the decision flags.
func (p *Printer) Flags(values map[string]bool) {
	if len(values) == 0 {
		fmt.Fprintln(p.out, p.dim("  no flags set"))
		return
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(p.out, "  %s = %t\n", k, values[k])
	}
}

// Error prints a failed dispatch.
func (p *Printer) Error(err error) {
	msg := p.out.String("  error: " + err.Error()).Foreground(p.out.Color("#fb7185"))
	fmt.Fprintln(p.out, msg)
}

// Prompt writes the input marker.
func (p *Printer) Prompt() {
	fmt.Fprint(p.out, p.out.String("> ").Foreground(p.out.Color("#c084fc")))
}

func (p *Printer) dim(s string) termenv.Style {
	return p.out.String(s).Faint()
}
