package query

import (
	"fmt"
	"strings"

	"github.com/poiesic/quaero/core"
	"github.com/tmc/langchaingo/prompts"
)

const answerTemplate = `You answer questions using ONLY the documents in the context below.

Rules:
1. Use only facts stated in the CONTEXT.
2. If the context does not contain the answer, reply "I don't have this information in the documents".
3. Never invent names, numbers, dates or codes.
4. When documents disagree, prefer the one with the highest relevance.
5. An Italian tax code (codice fiscale) has exactly 16 characters, for example MRCFNC69E20E329H.
6. Check that any person named in the question matches the person in the document.

{{.history_section}}
CONTEXT:
{{.context}}

QUESTION: {{.question}}

ANSWER (context only):`

const (
	contextSeparator = "\n\n---\n\n"
	historyHeader    = "USER'S PREVIOUS QUESTIONS (for context):\n"
	unknownFilename  = "unknown"
)

func newAnswerPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(answerTemplate, []string{"history_section", "context", "question"})
}

// formatContext renders hits as numbered, labeled passages.
func formatContext(hits []*core.SearchHit) string {
	parts := make([]string, 0, len(hits))
	for i, hit := range hits {
		filename, text := unknownFilename, ""
		if hit.Metadata != nil {
			text = hit.Metadata.Text
			if hit.Metadata.Filename != "" {
				filename = hit.Metadata.Filename
			}
		}
		parts = append(parts, fmt.Sprintf("[%d] (%s - relevance: %.2f%%)\n%s", i+1, filename, hit.Score*100, text))
	}
	return strings.Join(parts, contextSeparator)
}

// formatHistory lists the user questions of the last n turns. Assistant
// answers are never included.
func formatHistory(turns []core.ConversationTurn, n int) string {
	if len(turns) == 0 || n <= 0 {
		return ""
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	var sb strings.Builder
	sb.WriteString(historyHeader)
	for i, turn := range turns {
		if turn.User == "" {
			continue
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, turn.User)
	}
	sb.WriteString("\n")
	return sb.String()
}
