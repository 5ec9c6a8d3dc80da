package judge

import (
	"fmt"
	"strings"

	"github.com/restylelab/stylebench/internal/rubric"
)

// BuildEvaluationPrompt renders the instruction text sent alongside the
// two images when grading a pair. The reply contract mirrors the
// evaluation response schema.
func BuildEvaluationPrompt(r *rubric.Rubric, style string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are judging an AI image style transfer. The first image is the original; the second applies the %q style.\n\n", style)
	b.WriteString("Answer every assertion below with yes or no, a confidence from 1 (guess) to 5 (certain), and one sentence of visual evidence.\n\n")

	grouped := r.ByDimension()
	for _, dim := range rubric.DimensionOrder {
		assertions := grouped[dim]
		if len(assertions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", dim)
		for _, a := range assertions {
			fmt.Fprintf(&b, "- %s: %s\n", a.ID, a.Text)
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with only a JSON object in this shape, inside a ```json fence:\n\n")
	b.WriteString("```json\n")
	b.WriteString(`{
  "results": [
    {"assertion_id": "A1", "answer": "yes", "confidence": 4, "evidence": "Brush strokes are visible across the whole frame."}
  ]
}
`)
	b.WriteString("```\n\n")
	b.WriteString("Include exactly one entry per assertion. Do not add entries for assertions not listed above.\n")

	return b.String()
}

// BuildRankingPrompt renders the instruction text for holistic style
// ranking. One styled image per style is attached in the listed order.
func BuildRankingPrompt(styles []string) string {
	var b strings.Builder

	b.WriteString("You are judging AI image style transfers. Each attached image applies a different style to the same original.\n\n")
	b.WriteString("The images are attached in this order:\n")
	for i, style := range styles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, style)
	}

	fmt.Fprintf(&b, "\nRank all %d styles by overall visual preference, where rank 1 is the best. Every style gets a distinct rank.\n\n", len(styles))
	b.WriteString("Respond with only a JSON object in this shape, inside a ```json fence:\n\n")
	b.WriteString("```json\n")
	b.WriteString(`{
  "ranking": [
    {"style": "watercolor", "rank": 1, "reason": "Most coherent and appealing transfer."}
  ]
}
`)
	b.WriteString("```\n")

	return b.String()
}
