package chat

import (
	"strings"
	"time"
)

const transcriptHeader = "AI-Native Change Agent - LLM Chat Helper"

// TranscriptFilename is the download name for a transcript taken at now.
func TranscriptFilename(now time.Time) string {
	return "chat-conversation-" + now.UTC().Format("2006-01-02") + ".txt"
}

// Transcript renders the conversation as plain text. ok is false when
// there is nothing to export.
func (s *Service) Transcript(now time.Time) (filename, text string, ok bool) {
	msgs := s.Messages()
	if len(msgs) == 0 {
		return "", "", false
	}
	return TranscriptFilename(now), FormatTranscript(msgs, now), true
}

// FormatTranscript lays out messages under a header, separated by rules.
func FormatTranscript(msgs []Message, now time.Time) string {
	var b strings.Builder
	b.WriteString(transcriptHeader + "\n")
	b.WriteString("Exported: " + now.Format("01/02/2006, 03:04:05 PM") + "\n\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for i, m := range msgs {
		role := "Assistant"
		if m.Role == RoleUser {
			role = "User"
		}
		b.WriteString(role + ":\n")
		b.WriteString(m.Content + "\n\n")
		if i < len(msgs)-1 {
			b.WriteString("-------\n\n")
		}
	}
	return b.String()
}
