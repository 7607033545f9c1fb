package ollama

import (
	"fmt"
	"strings"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

func buildAnswerPrompt(question string, chunks []domain.ScoredResult) string {
	var contextBuilder strings.Builder
	for idx, chunk := range chunks {
		location := chunk.DocumentName
		if chunk.PageNumber > 0 {
			location = fmt.Sprintf("%s page=%d", location, chunk.PageNumber)
		}
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] file=%s score=%.3f\n%s\n\n",
			idx+1,
			location,
			chunk.Weighted,
			chunk.Text,
		))
	}

	return fmt.Sprintf(`Answer user question only from context below.
If context is insufficient, say it directly.
Cite the source file names you used.

Question:
%s

Context:
%s
`, question, contextBuilder.String())
}

func buildExpansionPrompt(query string, count int) string {
	return fmt.Sprintf(`You rewrite search queries for a document retrieval system.
Produce up to %d alternative phrasings of the question below that use
different keywords but keep the same meaning.
Return strict JSON object: {"queries": ["...", "..."]}.
No markdown, no extra keys.

Question:
%s`, count, query)
}
