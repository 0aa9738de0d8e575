package heuristic

import (
	"context"
	"fmt"
	"strings"

	"gopanel/ports"
)

// Generator produces persona narratives from templated rules. It needs no
// external service and always returns the same prose for the same profile.
type Generator struct{}

// NewGenerator creates a new heuristic narrative generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GeneratePersonaNarrative builds a name and description from the profile's
// aggregated attributes.
func (g *Generator) GeneratePersonaNarrative(_ context.Context, profile ports.PersonaProfile) (*ports.PersonaNarrative, error) {
	if profile.Size <= 0 {
		return nil, fmt.Errorf("empty persona profile %q", profile.Key)
	}

	return &ports.PersonaNarrative{
		Name:        g.personaName(profile),
		Description: g.describe(profile),
		Generator:   "heuristic",
	}, nil
}

// personaName composes a short label like "Value-Driven Urban 25-34".
func (g *Generator) personaName(p ports.PersonaProfile) string {
	parts := []string{}
	if len(p.TopValues) > 0 {
		parts = append(parts, titleCase(p.TopValues[0])+"-Driven")
	}
	if p.ModalLocation != "" {
		parts = append(parts, titleCase(p.ModalLocation))
	}
	if p.AgeBracket != "" {
		parts = append(parts, p.AgeBracket)
	}
	if len(parts) == 0 {
		return "General Segment"
	}
	return strings.Join(parts, " ")
}

func (g *Generator) describe(p ports.PersonaProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "This segment covers %d respondents", p.Size)
	if p.AgeBracket != "" {
		fmt.Fprintf(&b, " aged %s", p.AgeBracket)
	}
	if p.IncomeBracket != "" {
		fmt.Fprintf(&b, " in the %s income bracket", p.IncomeBracket)
	}
	if p.ModalLocation != "" {
		fmt.Fprintf(&b, ", mostly in %s areas", p.ModalLocation)
	}
	b.WriteString(". ")

	fmt.Fprintf(&b, "%s to buy (%.1f of 5 purchase intent)",
		intentLabel(p.MeanPurchaseIntent), p.MeanPurchaseIntent)
	if p.MeanAcceptablePrice > 0 {
		fmt.Fprintf(&b, " at a typical acceptable price near $%.0f", p.MeanAcceptablePrice)
	}
	b.WriteString(". ")

	if len(p.TopValues) > 0 {
		fmt.Fprintf(&b, "They value %s", joinTags(p.TopValues))
		if len(p.TopConcerns) > 0 {
			fmt.Fprintf(&b, ", and their main concerns are %s", joinTags(p.TopConcerns))
		}
		b.WriteString(".")
	} else if len(p.TopConcerns) > 0 {
		fmt.Fprintf(&b, "Their main concerns are %s.", joinTags(p.TopConcerns))
	}

	return b.String()
}

func intentLabel(intent float64) string {
	switch {
	case intent >= 4.0:
		return "Highly likely"
	case intent >= 3.0:
		return "Moderately likely"
	case intent > 0:
		return "Unlikely"
	default:
		return "Undetermined whether"
	}
}

func joinTags(tags []string) string {
	switch len(tags) {
	case 0:
		return ""
	case 1:
		return tags[0]
	case 2:
		return tags[0] + " and " + tags[1]
	default:
		return strings.Join(tags[:len(tags)-1], ", ") + ", and " + tags[len(tags)-1]
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
