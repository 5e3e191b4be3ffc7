package chat

import (
	"path/filepath"
	"strings"
)

// FileType classifies an uploaded file by how its preview is rendered.
type FileType string

const (
	FileTypeText    FileType = "text"
	FileTypeCode    FileType = "code"
	FileTypeCSV     FileType = "csv"
	FileTypeJSON    FileType = "json"
	FileTypeImage   FileType = "image"
	FileTypePDF     FileType = "pdf"
	FileTypeUnknown FileType = "unknown"
)

// MaxPreviewRunes bounds the stored preview of an uploaded file.
const MaxPreviewRunes = 2000

var extensionTypes = map[string]FileType{
	".txt":  FileTypeText,
	".md":   FileTypeText,
	".log":  FileTypeText,
	".csv":  FileTypeCSV,
	".json": FileTypeJSON,
	".pdf":  FileTypePDF,
	".png":  FileTypeImage,
	".jpg":  FileTypeImage,
	".jpeg": FileTypeImage,
	".gif":  FileTypeImage,
	".bmp":  FileTypeImage,
	".webp": FileTypeImage,
}

var codeLanguages = map[string]string{
	".py":   "python",
	".go":   "go",
	".js":   "javascript",
	".ts":   "typescript",
	".java": "java",
	".c":    "c",
	".cpp":  "cpp",
	".rs":   "rust",
	".rb":   "ruby",
	".sh":   "bash",
	".sql":  "sql",
	".html": "html",
	".css":  "css",
	".yaml": "yaml",
	".yml":  "yaml",
}

// FilePreview is the already-extracted content of an uploaded file.
type FilePreview struct {
	Filename    string   `json:"filename"`
	Type        FileType `json:"type"`
	Content     string   `json:"content"`
	ImageFormat string   `json:"image_format,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`
}

// DetectFileType maps a filename to its FileType by extension.
func DetectFileType(filename string) FileType {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if _, ok := codeLanguages[ext]; ok {
		return FileTypeCode
	}
	return FileTypeUnknown
}

// CodeLanguage returns the fence language for a code file, or "" when unknown.
func CodeLanguage(filename string) string {
	return codeLanguages[strings.ToLower(filepath.Ext(filename))]
}

// TruncatePreview keeps the first MaxPreviewRunes runes of content and marks
// the cut with a trailing "...". Short content is returned unchanged.
func TruncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxPreviewRunes {
		return content
	}
	return string(runes[:MaxPreviewRunes]) + "..."
}
