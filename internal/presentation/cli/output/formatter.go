// Package output renders CLI output as colored text, tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatText  Format = "text"
)

// Color represents ANSI color codes for terminal output.
type Color string

const (
	ColorReset  Color = "\033[0m"
	ColorRed    Color = "\033[31m"
	ColorGreen  Color = "\033[32m"
	ColorYellow Color = "\033[33m"
	ColorBlue   Color = "\033[34m"
	ColorCyan   Color = "\033[36m"
	ColorBold   Color = "\033[1m"
	ColorDim    Color = "\033[2m"
)

// Formatter writes styled output. It is safe for concurrent use.
type Formatter struct {
	mu           sync.Mutex
	writer       io.Writer
	format       Format
	colorEnabled bool
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// NewFormatter creates a text Formatter on stdout with color enabled.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		writer:       os.Stdout,
		format:       FormatText,
		colorEnabled: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(f *Formatter) {
		f.writer = w
	}
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(f *Formatter) {
		f.format = format
	}
}

// WithColor enables or disables colored output.
func WithColor(enabled bool) Option {
	return func(f *Formatter) {
		f.colorEnabled = enabled
	}
}

// Format returns the current output format.
func (f *Formatter) Format() Format {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.format
}

// Println writes formatted output with a newline.
func (f *Formatter) Println(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := fmt.Fprintf(f.writer, format+"\n", args...)
	return err
}

// Colorize wraps text with ANSI color codes if color is enabled.
func (f *Formatter) Colorize(text string, color Color) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.colorEnabled {
		return text
	}
	return string(color) + text + string(ColorReset)
}

func (f *Formatter) status(symbol string, color Color, format string, args []any) error {
	return f.Println("%s", f.Colorize(symbol+" "+fmt.Sprintf(format, args...), color))
}

// Success prints a success message in green.
func (f *Formatter) Success(format string, args ...any) error {
	return f.status("✓", ColorGreen, format, args)
}

// Error prints an error message in red.
func (f *Formatter) Error(format string, args ...any) error {
	return f.status("✗", ColorRed, format, args)
}

// Warning prints a warning message in yellow.
func (f *Formatter) Warning(format string, args ...any) error {
	return f.status("⚠", ColorYellow, format, args)
}

// Info prints an info message in blue.
func (f *Formatter) Info(format string, args ...any) error {
	return f.status("ℹ", ColorBlue, format, args)
}

// Bold returns text in bold.
func (f *Formatter) Bold(text string) string {
	return f.Colorize(text, ColorBold)
}

// Dim returns text in a muted style.
func (f *Formatter) Dim(text string) string {
	return f.Colorize(text, ColorDim)
}

// Header outputs a section header underlined to its width.
func (f *Formatter) Header(msg string) error {
	rule := strings.Repeat("─", utf8.RuneCountInString(msg))
	return f.Println("%s\n%s", f.Bold(msg), rule)
}

// SubHeader outputs a sub-header.
func (f *Formatter) SubHeader(msg string) error {
	return f.Println("%s", f.Colorize(msg, ColorCyan))
}

// Item outputs a key-value pair for structured display.
func (f *Formatter) Item(key, value string) error {
	return f.Println("  %s: %s", f.Dim(key), value)
}

// TableColumn defines a column in a table.
type TableColumn struct {
	Header string
	Width  int
	Align  Alignment
}

// Alignment defines text alignment in table cells.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// TableData represents data for table formatting.
type TableData struct {
	Columns []TableColumn
	Rows    [][]string
}

// Table writes data as an aligned table. Cells beyond the declared columns
// are dropped.
func (f *Formatter) Table(data TableData) error {
	if len(data.Columns) == 0 {
		return nil
	}

	widths := make([]int, len(data.Columns))
	for i, col := range data.Columns {
		widths[i] = max(utf8.RuneCountInString(col.Header), col.Width)
	}
	for _, row := range data.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, 0, len(data.Columns))
		for i, col := range data.Columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts = append(parts, padCell(cell, widths[i], col.Align))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	headers := make([]string, len(data.Columns))
	rules := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		headers[i] = col.Header
		rules[i] = strings.Repeat("-", widths[i])
	}

	if err := f.Println("%s", f.Bold(line(headers))); err != nil {
		return err
	}
	if err := f.Println("%s", strings.Join(rules, "  ")); err != nil {
		return err
	}
	for _, row := range data.Rows {
		if err := f.Println("%s", line(row)); err != nil {
			return err
		}
	}
	return nil
}

// padCell pads text to width runes with the given alignment.
func padCell(text string, width int, align Alignment) string {
	padding := width - utf8.RuneCountInString(text)
	if padding <= 0 {
		return text
	}
	if align == AlignRight {
		return strings.Repeat(" ", padding) + text
	}
	return text + strings.Repeat(" ", padding)
}

// JSON writes data as indented JSON.
func (f *Formatter) JSON(data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Spinner animates a progress indicator on stderr while a provider call is
// in flight.
type Spinner struct {
	mu       sync.Mutex
	frames   []string
	index    int
	message  string
	writer   io.Writer
	running  bool
	done     chan struct{}
	stopped  chan struct{}
	interval time.Duration
}

// SpinnerOption is a functional option for configuring a Spinner.
type SpinnerOption func(*Spinner)

// NewSpinner creates a new Spinner with the given options.
func NewSpinner(message string, opts ...SpinnerOption) *Spinner {
	s := &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message:  message,
		writer:   os.Stderr,
		interval: 80 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithSpinnerWriter sets the output writer for the spinner.
func WithSpinnerWriter(w io.Writer) SpinnerOption {
	return func(s *Spinner) {
		s.writer = w
	}
}

// Start begins the spinner animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go s.animate(s.done, s.stopped)
}

// Stop stops the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
	_, _ = fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", utf8.RuneCountInString(s.message)+4))
}

func (s *Spinner) animate(done <-chan struct{}, stopped chan<- struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(stopped)

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := s.frames[s.index]
			s.index = (s.index + 1) % len(s.frames)
			s.mu.Unlock()

			_, _ = fmt.Fprintf(s.writer, "\r%s %s", frame, s.message)
		}
	}
}

// ParseFormat parses a --output value. Blank means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "text", "":
		return FormatText, nil
	default:
		return FormatText, fmt.Errorf("unknown format: %s", s)
	}
}
