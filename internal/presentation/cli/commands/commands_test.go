package commands

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/playground/internal/application"
	"github.com/jbctechsolutions/playground/internal/application/chat"
	domainChat "github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/infrastructure/config"
	"github.com/jbctechsolutions/playground/internal/infrastructure/storage"
	"github.com/jbctechsolutions/playground/internal/presentation/cli/output"
)

// executeCommand executes a cobra command with the given args.
func executeCommand(root *cobra.Command, args ...string) error {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	return root.Execute()
}

// writeTestConfig writes a config file with a database in a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "database:\n  path: " + filepath.Join(dir, "playground.db") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newTestChatState(t *testing.T) (*chatState, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Database.Path = storage.MemoryPath

	container, err := application.NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	sess, err := container.ChatService().CreateSession(context.Background(), "", chat.Settings{})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	buf := new(bytes.Buffer)
	return &chatState{
		service:   container.ChatService(),
		catalog:   container.Catalog(),
		formatter: output.NewFormatter(output.WithWriter(buf), output.WithColor(false)),
		session:   sess,
	}, buf
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd == nil {
		t.Fatal("NewRootCmd returned nil")
	}

	if cmd.Use != "playground" {
		t.Errorf("expected Use='playground', got %q", cmd.Use)
	}

	wantSubcmds := []string{"version", "init", "serve", "ask", "chat", "stats", "models"}
	subcmds := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcmds[sub.Name()] = true
	}

	for _, want := range wantSubcmds {
		if !subcmds[want] {
			t.Errorf("missing subcommand: %s", want)
		}
	}

	wantFlags := []string{"config", "env-file", "output", "verbose"}
	for _, flag := range wantFlags {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag: %s", flag)
		}
	}
}

func TestVersionCmd_NoError(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"basic", []string{"version"}, false},
		{"short", []string{"version", "--short"}, false},
		{"json", []string{"version", "-o", "json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executeCommand(NewRootCmd(), tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := executeCommand(NewRootCmd(), "--config", path, "init"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %v, want 0600", info.Mode().Perm())
	}

	if err := executeCommand(NewRootCmd(), "--config", path, "init"); err == nil {
		t.Error("expected error when config exists")
	}
	if err := executeCommand(NewRootCmd(), "--config", path, "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestAskCmd_Validation(t *testing.T) {
	err := executeCommand(NewRootCmd(), "ask")
	if err == nil {
		t.Fatal("expected error without a question")
	}
}

func TestNewAskCmd_Structure(t *testing.T) {
	cmd := NewAskCmd()
	for _, flag := range []string{"model", "system", "temperature", "top-p", "max-tokens", "web-search", "file"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
	if got := cmd.Flags().Lookup("temperature").DefValue; got != "0.7" {
		t.Errorf("temperature default = %s, want 0.7", got)
	}
}

func TestNewChatCmd_Structure(t *testing.T) {
	cmd := NewChatCmd()
	for _, flag := range []string{"model", "session", "agent", "system", "web-search"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	defer Shutdown()
	err := executeCommand(NewRootCmd(), "--config", writeTestConfig(t), "--env-file", "", "-o", "yaml", "stats")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("error = %v, want unknown format", err)
	}
}

func TestStatsAndModelsCmd_NoError(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"stats", []string{"stats"}},
		{"stats json", []string{"stats", "-o", "json"}},
		{"models", []string{"models"}},
		{"models json", []string{"models", "-o", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer Shutdown()
			args := append([]string{"--config", writeTestConfig(t), "--env-file", ""}, tt.args...)
			if err := executeCommand(NewRootCmd(), args...); err != nil {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestStatsCmd_UnknownSession(t *testing.T) {
	defer Shutdown()

	err := executeCommand(NewRootCmd(), "--config", writeTestConfig(t), "--env-file", "", "stats", "--session", "missing")
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestChatState_HandleCommand(t *testing.T) {
	ctx := context.Background()
	state, buf := newTestChatState(t)

	tests := []struct {
		line     string
		wantExit bool
		wantErr  bool
	}{
		{"/help", false, false},
		{"/session", false, false},
		{"/stats", false, false},
		{"/model my-custom-model", false, false},
		{"/model yandexgpt-lite", false, false},
		{"/model", false, true},
		{"/temperature 1.2", false, false},
		{"/temperature hot", false, true},
		{"/temperature -1", false, true},
		{"/search on", false, false},
		{"/search maybe", false, true},
		{"/system You are terse.", false, false},
		{"/attach", false, true},
		{"/unknown", false, true},
		{"/quit", true, false},
		{"/EXIT", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			exit, err := state.handleCommand(ctx, tt.line)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if exit != tt.wantExit {
				t.Errorf("exit = %v, want %v", exit, tt.wantExit)
			}
		})
	}

	p := state.session.Params
	if p.Model != "yandexgpt-lite" || p.Temperature != 1.2 || !p.WebSearch {
		t.Errorf("params = %+v", p)
	}
	if state.session.SystemPrompt != "You are terse." {
		t.Errorf("SystemPrompt = %q", state.session.SystemPrompt)
	}
	if !strings.Contains(buf.String(), "Session Totals") {
		t.Error("expected /stats output")
	}
	if !strings.Contains(buf.String(), "my-custom-model is not in the model catalog") {
		t.Error("expected catalog warning for unknown model")
	}
}

func TestChatState_NewAndAttach(t *testing.T) {
	ctx := context.Background()
	state, _ := newTestChatState(t)
	first := state.session.ID

	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("# Notes"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := state.handleCommand(ctx, "/attach "+path); err != nil {
		t.Fatalf("/attach error = %v", err)
	}
	files, err := state.service.Files(ctx, first)
	if err != nil || len(files) != 1 {
		t.Fatalf("Files() = %v, %v", files, err)
	}

	if _, err := state.handleCommand(ctx, "/search on"); err != nil {
		t.Fatal(err)
	}
	if _, err := state.handleCommand(ctx, "/new"); err != nil {
		t.Fatalf("/new error = %v", err)
	}
	if state.session.ID == first {
		t.Error("/new should switch to a new session")
	}
	if !state.session.Params.WebSearch {
		t.Error("/new should carry over web search")
	}
}

func TestReadFilePreview(t *testing.T) {
	dir := t.TempDir()

	t.Run("code", func(t *testing.T) {
		path := filepath.Join(dir, "main.go")
		os.WriteFile(path, []byte("package main"), 0o600)

		preview, size, err := readFilePreview(path)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if preview.Type != domainChat.FileTypeCode || preview.Content != "package main" || size != 12 {
			t.Errorf("preview = %+v, size = %d", preview, size)
		}
	})

	t.Run("long text truncated", func(t *testing.T) {
		path := filepath.Join(dir, "long.txt")
		os.WriteFile(path, []byte(strings.Repeat("a", domainChat.MaxPreviewRunes+10)), 0o600)

		preview, _, err := readFilePreview(path)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if len(preview.Content) != domainChat.MaxPreviewRunes+3 {
			t.Errorf("content length = %d", len(preview.Content))
		}
	})

	t.Run("image", func(t *testing.T) {
		path := filepath.Join(dir, "pixel.png")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 3)))
		f.Close()

		preview, _, err := readFilePreview(path)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if preview.ImageFormat != "png" || preview.Width != 4 || preview.Height != 3 || preview.Content != "" {
			t.Errorf("preview = %+v", preview)
		}
	})

	t.Run("pdf rejected", func(t *testing.T) {
		path := filepath.Join(dir, "doc.pdf")
		os.WriteFile(path, []byte("%PDF-1.4"), 0o600)

		if _, _, err := readFilePreview(path); err == nil {
			t.Error("expected error for PDF")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, _, err := readFilePreview(filepath.Join(dir, "nope.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
