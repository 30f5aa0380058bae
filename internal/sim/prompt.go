package sim

import (
	"fmt"
	"strings"

	"github.com/ladinzgit/personasim/internal/persona"
)

// systemPrompt renders a persona profile as the model's role instruction.
func systemPrompt(p persona.Persona) string {
	traits := p.Type.Traits()

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %d-year-old %s %s.\n", p.Name, p.Age, strings.ToLower(p.Gender), p.Occupation)
	fmt.Fprintf(&b, "Gamer profile: %s - %s\n", p.Type.DisplayName(), p.Type.Description())
	fmt.Fprintf(&b, "Spending on games: %s\n", traits.SpendingLevel)
	fmt.Fprintf(&b, "Time spent on games: %s\n", traits.TimeInvestment)
	fmt.Fprintf(&b, "Platforms: %s\n", strings.Join(traits.Platforms, ", "))
	fmt.Fprintf(&b, "Purchase habit: %s\n", traits.PurchaseTiming)
	fmt.Fprintf(&b, "How you research games: %s\n", traits.InformationSeeking)
	fmt.Fprintf(&b, "Brand loyalty: %s\n", traits.BrandLoyalty)
	b.WriteString("Stay in character. Decide exactly as this person would, not as an assistant.")
	return b.String()
}

// dynamicPrompt asks for a verdict given dated player reviews available up
// to the simulation date.
func dynamicPrompt(date string, evidence []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s. You are deciding whether to buy the game today.\n\n", date)
	if len(evidence) > 0 {
		b.WriteString("Player reviews published up to today:\n")
		b.WriteString(strings.Join(evidence, "\n"))
		b.WriteString("\n\n")
	} else {
		b.WriteString("No player reviews are available yet.\n\n")
	}
	b.WriteString("Based on who you are and the reviews above, will you buy the game today?\n")
	b.WriteString(`Answer in JSON: {"decision": "YES" or "NO", "reasoning": "<one or two sentences in character>"}`)
	return b.String()
}

// staticPrompt asks for a one-off verdict from the persona profile alone.
func staticPrompt() string {
	var b strings.Builder
	b.WriteString("A major new AAA game has just been released.\n")
	b.WriteString("Based only on who you are, will you buy it?\n")
	b.WriteString(`Answer in JSON: {"decision": "YES" or "NO", "reasoning": "<one or two sentences in character>"}`)
	return b.String()
}
