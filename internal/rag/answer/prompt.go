package answer

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
)

var systemInstructions = map[chatModel.Mode]string{
	chatModel.ModeCees: `You are CeeS, the technical support assistant.
Answer questions about equipment, installation, troubleshooting and maintenance.
Be precise and give step-by-step instructions where they help.`,
	chatModel.ModeChris: `You are ChriS, the procurement assistant.
Answer questions about suppliers, purchasing policy, contracts, pricing and ordering.
Be concise and point out approval steps or limits when they apply.`,
}

const groundingRules = `Use only the numbered context passages below to state facts about internal documents.
Cite the passages you rely on as [1], [2] and so on.
If the context does not contain the answer, say so plainly.`

const noContextNotice = `No internal documents matched this question. Tell the user that no internal
context was available, answer only from general knowledge, and do not present anything as coming
from company documents.`

const retrievalFailedNotice = `Internal documents could not be searched for this question because of
a system error. Tell the user that company documents could not be consulted, answer only from general
knowledge, and do not present anything as coming from company documents.`

// Prepended to the model's reply when no internal context was used.
const (
	NoContextPrefix       = "Note: no internal documents matched this question, so this answer is not based on company documents.\n\n"
	RetrievalFailedPrefix = "Note: company documents could not be searched right now, so this answer is not based on them.\n\n"
)

// contextBlock renders results as numbered passages annotated with their
// source, stopping before budget runes of chunk text is exceeded. It returns
// the results actually included.
func contextBlock(results []commonModels.RetrievalResult, budget int) (string, []commonModels.RetrievalResult) {
	var b strings.Builder
	used := make([]commonModels.RetrievalResult, 0, len(results))
	remaining := budget

	for _, r := range results {
		text := r.Chunk.Content
		n := len([]rune(text))
		if budget > 0 && n > remaining {
			if len(used) > 0 || remaining <= 0 {
				break
			}
			// the best match alone is over budget: keep its head
			text = string([]rune(text)[:remaining])
			n = remaining
		}
		remaining -= n
		used = append(used, r)

		fmt.Fprintf(&b, "[%d] Source: %s", len(used), r.FileName)
		if r.Category != "" {
			fmt.Fprintf(&b, " | Category: %s", r.Category)
		}
		fmt.Fprintf(&b, " | Similarity: %.2f\n%s\n\n", r.Similarity, text)
	}
	return strings.TrimRight(b.String(), "\n"), used
}

func systemPrompt(mode chatModel.Mode, contextFound, retrievalFailed bool) string {
	base, ok := systemInstructions[mode]
	if !ok {
		base = systemInstructions[chatModel.ModeCees]
	}
	switch {
	case retrievalFailed:
		return base + "\n\n" + retrievalFailedNotice
	case !contextFound:
		return base + "\n\n" + noContextNotice
	}
	return base + "\n\n" + groundingRules
}

func userPrompt(question, context string, history []string) string {
	var b strings.Builder
	if context != "" {
		b.WriteString("Context:\n")
		b.WriteString(context)
		b.WriteString("\n\n")
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			b.WriteString(turn)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
