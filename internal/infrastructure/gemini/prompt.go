package gemini

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"skin-vision-bot/internal/domain/entity"
)

// countSummary возвращает строку вида "2 Papule(s), 1 Blackhead(s)".
// Классы идут по убыванию количества, при равенстве по имени.
func countSummary(dets []entity.Detection) string {
	counts := lo.CountValuesBy(dets, func(d entity.Detection) string { return d.Label })
	classes := lo.Keys(counts)
	sort.Slice(classes, func(i, j int) bool {
		if counts[classes[i]] != counts[classes[j]] {
			return counts[classes[i]] > counts[classes[j]]
		}
		return classes[i] < classes[j]
	})
	parts := lo.Map(classes, func(c string, _ int) string {
		return fmt.Sprintf("%d %s(s)", counts[c], c)
	})
	return strings.Join(parts, ", ")
}

func buildPrompt(dets []entity.Detection) string {
	var b strings.Builder
	if len(dets) == 0 {
		b.WriteString("Based on a skin analysis, no acne lesions were detected.\n")
	} else {
		fmt.Fprintf(&b, "Based on a skin analysis, the following acne types were detected: %s.\n", countSummary(dets))
		fmt.Fprintf(&b, "Total detected: %d.\n", len(dets))
	}
	b.WriteString(`
Provide a professional, brief analysis of what these findings mean and general skincare advice (e.g., ingredients like Salicylic Acid for blackheads/whiteheads or Benzoyl Peroxide for inflammatory acne).

IMPORTANT: Include a strong medical disclaimer that this is an AI analysis and not a professional medical diagnosis. Suggest consulting a dermatologist.

Return the response in clear Markdown format. Use bullet points and bold text where appropriate.
`)
	return b.String()
}
