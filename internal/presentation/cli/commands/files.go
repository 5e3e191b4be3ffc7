package commands

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	domainChat "github.com/jbctechsolutions/playground/internal/domain/chat"
)

// readFilePreview loads a local file as a preview for the prompt. Text-like
// files contribute their content; images contribute their format and size.
func readFilePreview(path string) (domainChat.FilePreview, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domainChat.FilePreview{}, 0, fmt.Errorf("could not read %s: %w", path, err)
	}

	name := filepath.Base(path)
	preview := domainChat.FilePreview{
		Filename: name,
		Type:     domainChat.DetectFileType(name),
	}

	switch preview.Type {
	case domainChat.FileTypeImage:
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			// Formats without a registered decoder still get their extension.
			preview.ImageFormat = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
			break
		}
		preview.ImageFormat = format
		preview.Width = cfg.Width
		preview.Height = cfg.Height
	case domainChat.FileTypePDF:
		return domainChat.FilePreview{}, 0, fmt.Errorf("%s: PDF text extraction is not supported, attach a text export instead", name)
	default:
		preview.Content = domainChat.TruncatePreview(string(data))
	}

	return preview, int64(len(data)), nil
}
