package session

import (
	"strings"
	"unicode/utf8"
)

// maxTitleRunes bounds titles derived from message text.
const maxTitleRunes = 50

// UntitledName is shown for sessions without a title.
const UntitledName = "Untitled session"

// TitleFromMessage derives a session title from the first user message:
// the first line, whitespace-collapsed and truncated.
func TitleFromMessage(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.Join(strings.Fields(line), " ")
	if line == "" {
		return UntitledName
	}
	if utf8.RuneCountInString(line) <= maxTitleRunes {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:maxTitleRunes])) + "..."
}

// DisplayTitle returns the session title or UntitledName.
func (s *Session) DisplayTitle() string {
	if s.Title == "" {
		return UntitledName
	}
	return s.Title
}
