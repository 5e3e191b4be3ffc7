package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

// FoldFiles appends a labelled block for each preview, in order, to the
// last user message. A user message is added when there is none. msgs is
// not modified.
func FoldFiles(msgs []chat.Message, files []chat.FilePreview) []chat.Message {
	out := chat.CloneMessages(msgs)
	if len(files) == 0 {
		return out
	}

	blocks := make([]string, 0, len(files))
	for _, f := range files {
		blocks = append(blocks, RenderFile(f))
	}
	attachment := strings.Join(blocks, "\n\n")

	idx := chat.LastIndex(out, chat.RoleUser)
	if idx < 0 {
		return append(out, chat.NewUserMessage(attachment))
	}

	if out[idx].Content == "" {
		out[idx].Content = attachment
	} else {
		out[idx].Content += "\n\n" + attachment
	}
	return out
}

// RenderFile formats one preview as a delimited block labelled with its filename.
func RenderFile(f chat.FilePreview) string {
	var body string
	switch f.Type {
	case chat.FileTypeCode:
		body = fence(chat.CodeLanguage(f.Filename), f.Content)
	case chat.FileTypeCSV:
		body = fence("csv", f.Content)
	case chat.FileTypeJSON:
		body = fence("json", prettyJSON(f.Content))
	case chat.FileTypeImage:
		body = describeImage(f)
	default:
		// text, pdf and unknown previews are already plain text
		body = f.Content
	}

	return fmt.Sprintf("--- File: %s ---\n%s\n--- End of file: %s ---", f.Filename, body, f.Filename)
}

func fence(lang, content string) string {
	return "```" + lang + "\n" + strings.TrimRight(content, "\n") + "\n```"
}

// prettyJSON indents content, returning it unchanged when it does not parse
// (a truncated preview, for instance).
func prettyJSON(content string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return content
	}
	return buf.String()
}

func describeImage(f chat.FilePreview) string {
	format := f.ImageFormat
	if format == "" {
		format = "unknown format"
	}
	desc := fmt.Sprintf("[Image: %s", format)
	if f.Width > 0 && f.Height > 0 {
		desc += fmt.Sprintf(", %dx%d pixels", f.Width, f.Height)
	}
	desc += "]"
	if f.Content != "" {
		desc += "\n" + f.Content
	}
	return desc
}

// appendToSystem adds text to the first system message, prepending a
// system message when the conversation has none.
func appendToSystem(msgs []chat.Message, text string) []chat.Message {
	if text == "" {
		return msgs
	}

	idx := chat.FirstIndex(msgs, chat.RoleSystem)
	if idx < 0 {
		return append([]chat.Message{chat.NewSystemMessage(text)}, msgs...)
	}

	if msgs[idx].Content == "" {
		msgs[idx].Content = text
	} else {
		msgs[idx].Content += "\n\n" + text
	}
	return msgs
}
