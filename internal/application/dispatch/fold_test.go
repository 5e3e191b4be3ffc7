package dispatch

import (
	"strings"
	"testing"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

func TestRenderFile(t *testing.T) {
	tests := []struct {
		name    string
		preview chat.FilePreview
		want    []string
	}{
		{
			name:    "code fenced with language",
			preview: chat.FilePreview{Filename: "main.py", Type: chat.FileTypeCode, Content: "print(1)\n"},
			want:    []string{"--- File: main.py ---", "```python\nprint(1)\n```", "--- End of file: main.py ---"},
		},
		{
			name:    "image described",
			preview: chat.FilePreview{Filename: "cat.png", Type: chat.FileTypeImage, ImageFormat: "PNG", Width: 640, Height: 480},
			want:    []string{"[Image: PNG, 640x480 pixels]"},
		},
		{
			name:    "pdf verbatim",
			preview: chat.FilePreview{Filename: "doc.pdf", Type: chat.FileTypePDF, Content: "page one"},
			want:    []string{"--- File: doc.pdf ---\npage one\n--- End of file: doc.pdf ---"},
		},
		{
			name:    "invalid json kept verbatim",
			preview: chat.FilePreview{Filename: "big.json", Type: chat.FileTypeJSON, Content: `{"a": [1, 2...`},
			want:    []string{"```json\n{\"a\": [1, 2...\n```"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderFile(tt.preview)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("RenderFile() missing %q in:\n%s", w, got)
				}
			}
		})
	}
}

func TestFoldFiles_NoUserMessage(t *testing.T) {
	out := FoldFiles([]chat.Message{chat.NewSystemMessage("sys")}, []chat.FilePreview{{Filename: "a.txt", Type: chat.FileTypeText, Content: "a"}})

	if len(out) != 2 || out[1].Role != chat.RoleUser {
		t.Fatalf("expected an added user message, got %+v", out)
	}
	if !strings.HasPrefix(out[1].Content, "--- File: a.txt ---") {
		t.Errorf("unexpected content %q", out[1].Content)
	}
}

func TestFoldFiles_NoFiles(t *testing.T) {
	in := []chat.Message{chat.NewUserMessage("hi")}
	out := FoldFiles(in, nil)

	if len(out) != 1 || out[0].Content != "hi" {
		t.Errorf("unexpected output %+v", out)
	}
}
