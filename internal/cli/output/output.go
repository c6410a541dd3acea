// Package output renders CLI output in terminal, markdown, and JSON
// modes. Mode auto picks text on a TTY and markdown when piped, so agent
// and script consumers get parseable output without flags.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// OutputMode selects how command output is rendered.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode parses a mode string, falling back to auto for unknown values.
func Mode(s string) OutputMode {
	switch OutputMode(s) {
	case ModeText, ModeMarkdown, ModeJSON:
		return OutputMode(s)
	default:
		return ModeAuto
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting TTY state from the output
// writer.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(termenv.File); ok {
		isTTY = termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state, for
// tests and callers that already know.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	r := &Renderer{out: out, errOut: errOut, mode: mode, isTTY: isTTY}
	if r.EffectiveMode() == ModeText && isTTY {
		r.styles = DefaultStyles()
	} else {
		r.styles = PlainStyles()
	}
	return r
}

// EffectiveMode resolves auto to the concrete mode in effect.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the underlying output writer, for encoders that stream
// directly.
func (r *Renderer) Writer() io.Writer { return r.out }

// Styles returns the active style set.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line to standard output.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Success writes a success line.
func (r *Renderer) Success(s string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Success.Render("✓ " + s))
		return
	}
	r.Println("**" + s + "**")
}

// Err writes an error line to the error stream.
func (r *Renderer) Err(s string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+s))
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(s string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+s))
}

// Header writes a section header at the given level.
func (r *Renderer) Header(level int, s string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Bold.Render(s))
		return
	}
	r.Println(FormatHeader(level, s))
}

// StatusLine writes a name with a status tag and an optional note.
func (r *Renderer) StatusLine(name, status, note string) {
	tag := status
	if r.EffectiveMode() == ModeText {
		switch status {
		case "success", "created":
			tag = r.styles.Success.Render(status)
		case "error", "failed":
			tag = r.styles.Error.Render(status)
		case "warning", "skipped":
			tag = r.styles.Warning.Render(status)
		}
	}
	if note != "" {
		r.Printf("  %s  [%s] %s\n", name, tag, note)
		return
	}
	r.Printf("  %s  [%s]\n", name, tag)
}

// JSON encodes v to the output writer with indentation.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader renders a markdown header line.
func FormatHeader(level int, s string) string {
	prefix := ""
	for i := 0; i < level; i++ {
		prefix += "#"
	}
	return prefix + " " + s
}

// FormatKeyValue renders a markdown key-value line.
func FormatKeyValue(key, value string) string {
	return "- **" + key + "**: " + value
}
