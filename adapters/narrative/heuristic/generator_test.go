package heuristic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopanel/ports"
)

func sampleProfile() ports.PersonaProfile {
	return ports.PersonaProfile{
		Key:                 "25-34|female|50-75k",
		AgeBracket:          "25-34",
		Gender:              "female",
		IncomeBracket:       "50-75k",
		Size:                42,
		MeanAge:             29.5,
		ModalLocation:       "urban",
		MeanPurchaseIntent:  4.2,
		MeanAcceptablePrice: 95,
		TopValues:           []string{"quality", "sustainability"},
		TopConcerns:         []string{"price"},
	}
}

func TestGeneratePersonaNarrative(t *testing.T) {
	narrative, err := NewGenerator().GeneratePersonaNarrative(context.Background(), sampleProfile())
	require.NoError(t, err)

	assert.Equal(t, "Quality-Driven Urban 25-34", narrative.Name)
	assert.Equal(t, "heuristic", narrative.Generator)
	assert.Contains(t, narrative.Description, "42 respondents")
	assert.Contains(t, narrative.Description, "Highly likely")
	assert.Contains(t, narrative.Description, "$95")
	assert.Contains(t, narrative.Description, "quality and sustainability")
	assert.Contains(t, narrative.Description, "price")
}

func TestGeneratePersonaNarrativeDeterministic(t *testing.T) {
	gen := NewGenerator()
	a, err := gen.GeneratePersonaNarrative(context.Background(), sampleProfile())
	require.NoError(t, err)
	b, err := gen.GeneratePersonaNarrative(context.Background(), sampleProfile())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGeneratePersonaNarrativeRejectsEmptyProfile(t *testing.T) {
	_, err := NewGenerator().GeneratePersonaNarrative(context.Background(), ports.PersonaProfile{})
	assert.Error(t, err)
}

func TestIntentLabels(t *testing.T) {
	assert.Equal(t, "Highly likely", intentLabel(4.5))
	assert.Equal(t, "Moderately likely", intentLabel(3.2))
	assert.Equal(t, "Unlikely", intentLabel(2.0))
}

func TestJoinTags(t *testing.T) {
	assert.Equal(t, "a", joinTags([]string{"a"}))
	assert.Equal(t, "a and b", joinTags([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", joinTags([]string{"a", "b", "c"}))
}
