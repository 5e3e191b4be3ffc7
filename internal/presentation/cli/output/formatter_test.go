package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func newPlain(buf *bytes.Buffer) *Formatter {
	return NewFormatter(WithWriter(buf), WithColor(false))
}

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	if f.Format() != FormatText {
		t.Errorf("expected format %v, got %v", FormatText, f.Format())
	}
	if !f.colorEnabled {
		t.Error("expected color to be enabled by default")
	}

	f = NewFormatter(WithFormat(FormatJSON), WithColor(false))
	if f.Format() != FormatJSON || f.colorEnabled {
		t.Errorf("options not applied: format=%v color=%v", f.Format(), f.colorEnabled)
	}
}

func TestFormatter_Colorize(t *testing.T) {
	var buf bytes.Buffer

	colored := NewFormatter(WithWriter(&buf))
	if got := colored.Colorize("x", ColorRed); got != "\033[31mx\033[0m" {
		t.Errorf("Colorize() = %q", got)
	}

	plain := newPlain(&buf)
	if got := plain.Colorize("x", ColorRed); got != "x" {
		t.Errorf("Colorize() without color = %q", got)
	}
}

func TestFormatter_MessageTypes(t *testing.T) {
	tests := []struct {
		name   string
		print  func(f *Formatter) error
		prefix string
	}{
		{"success", func(f *Formatter) error { return f.Success("saved %d", 2) }, "✓ saved 2"},
		{"error", func(f *Formatter) error { return f.Error("failed") }, "✗ failed"},
		{"warning", func(f *Formatter) error { return f.Warning("careful") }, "⚠ careful"},
		{"info", func(f *Formatter) error { return f.Info("note") }, "ℹ note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.print(newPlain(&buf)); err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := buf.String(); got != tt.prefix+"\n" {
				t.Errorf("output = %q, want %q", got, tt.prefix+"\n")
			}
		})
	}
}

func TestFormatter_HeaderAndItem(t *testing.T) {
	var buf bytes.Buffer
	f := newPlain(&buf)

	f.Header("Сессия")
	f.Item("Model", "yandexgpt")

	want := "Сессия\n──────\n  Model: yandexgpt\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	f := newPlain(&buf)

	err := f.Table(TableData{
		Columns: []TableColumn{
			{Header: "MODEL"},
			{Header: "TOKENS", Align: AlignRight},
		},
		Rows: [][]string{
			{"GigaChat:latest", "120"},
			{"yandexgpt", "7", "extra"},
		},
	})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}

	want := strings.Join([]string{
		"MODEL            TOKENS",
		"---------------  ------",
		"GigaChat:latest     120",
		"yandexgpt             7",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("Table() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatter_Table_EmptyColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := newPlain(&buf).Table(TableData{}); err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestPadCell(t *testing.T) {
	tests := []struct {
		text  string
		width int
		align Alignment
		want  string
	}{
		{"ab", 4, AlignLeft, "ab  "},
		{"ab", 4, AlignRight, "  ab"},
		{"abcdef", 4, AlignLeft, "abcdef"},
		{"ёж", 3, AlignLeft, "ёж "},
	}

	for _, tt := range tests {
		if got := padCell(tt.text, tt.width, tt.align); got != tt.want {
			t.Errorf("padCell(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithWriter(&buf), WithFormat(FormatJSON))

	if err := f.JSON(map[string]int{"total_tokens": 42}); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var got map[string]int
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if got["total_tokens"] != 42 {
		t.Errorf("decoded = %v", got)
	}
	if !strings.Contains(buf.String(), "\n  \"total_tokens\"") {
		t.Errorf("expected indented JSON, got %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{" JSON ", FormatJSON, false},
		{"table", FormatTable, false},
		{"yaml", FormatText, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner("Waiting", WithSpinnerWriter(&buf))
	s.interval = 5 * time.Millisecond

	s.Start()
	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop()

	if !strings.Contains(buf.String(), "Waiting") {
		t.Errorf("expected spinner message in output, got %q", buf.String())
	}
}

func TestFormatter_ThreadSafety(t *testing.T) {
	var buf bytes.Buffer
	f := newPlain(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			f.Item("n", strings.Repeat("x", n))
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 20 {
		t.Errorf("lines = %d, want 20", got)
	}
}
