package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/csheth/legalchain/internal/nda"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

const systemPrompt = "You are a careful contracts attorney drafting agreements in professional, plain legal English."

func buildNDAPrompt(input nda.FormInput) string {
	var b strings.Builder
	b.WriteString("Create a legal Non-Disclosure Agreement (NDA) with the following details:\n\n")
	writeDetail(&b, "Party A", input.PartyOne)
	writeDetail(&b, "Party B", input.PartyTwo)
	writeDetail(&b, "Effective Date", input.EffectiveDate)
	writeDetail(&b, "Description of Confidential Info", input.Description)
	writeDetail(&b, "Term Length", termLabel(input.TermLength))
	b.WriteString("\nWrite it in professional, plain legal English. ")
	b.WriteString("Return only the agreement text, without commentary or markdown.")
	return b.String()
}

func writeDetail(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "- %s: %s\n", label, strings.TrimSpace(whitespaceRe.ReplaceAllString(value, " ")))
}

func termLabel(years int) string {
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}
