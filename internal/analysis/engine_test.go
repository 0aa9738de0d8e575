package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopanel/domain/core"
	"gopanel/internal/persona"
	"gopanel/internal/testkit"
	"gopanel/ports"
)

type stubNarrative struct {
	err   error
	calls int
}

func (s *stubNarrative) GeneratePersonaNarrative(_ context.Context, profile ports.PersonaProfile) (*ports.PersonaNarrative, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ports.PersonaNarrative{
		Name:        "Segment " + profile.Key,
		Description: "stub",
		Generator:   "stub",
	}, nil
}

func studyInputs(t *testing.T, count int) StudyInputs {
	t.Helper()
	config := testkit.DefaultRespondentConfig()
	config.RespondentCount = count
	return StudyInputs{
		StudyID:         core.StudyID("study-001"),
		Responses:       testkit.NewRespondentGenerator(config).Generate(),
		MaxDiffFeatures: config.MaxDiffFeatures,
	}
}

func TestRunStudyAssemblesAllSections(t *testing.T) {
	narrative := &stubNarrative{}
	engine := NewEngine(persona.NewDefaultClusterer(), narrative)

	report, err := engine.RunStudy(context.Background(), studyInputs(t, 400))
	require.NoError(t, err)

	assert.NotEmpty(t, report.ReportID)
	assert.Equal(t, core.StudyID("study-001"), report.StudyID)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Equal(t, 400, report.SampleSize)

	require.NotNil(t, report.Validation)
	assert.Greater(t, report.Validation.OverallConfidence, 0.0)

	require.NotEmpty(t, report.Personas)
	for _, section := range report.Personas {
		assert.GreaterOrEqual(t, section.Cluster.Size, persona.DefaultMinClusterSize)
		require.NotNil(t, section.Narrative)
		assert.Contains(t, section.Narrative.Name, section.Cluster.Key)
	}
	assert.Equal(t, len(report.Personas), narrative.calls)

	require.NotNil(t, report.MaxDiff)
	assert.Equal(t, len(studyInputs(t, 1).MaxDiffFeatures), report.MaxDiff.TotalFeatures)

	require.NotNil(t, report.PriceMeter)
	assert.Greater(t, report.PriceMeter.AcceptableRange.Upper, report.PriceMeter.AcceptableRange.Lower)
}

func TestRunStudyNoResponses(t *testing.T) {
	engine := NewEngine(persona.NewDefaultClusterer(), &stubNarrative{})
	_, err := engine.RunStudy(context.Background(), StudyInputs{StudyID: "empty"})
	assert.Error(t, err)
}

func TestRunStudySkipsAbsentSections(t *testing.T) {
	inputs := studyInputs(t, 100)
	inputs.MaxDiffFeatures = nil
	for i := range inputs.Responses {
		inputs.Responses[i].PriceMeter = nil
	}

	engine := NewEngine(persona.NewDefaultClusterer(), &stubNarrative{})
	report, err := engine.RunStudy(context.Background(), inputs)
	require.NoError(t, err)

	assert.Nil(t, report.MaxDiff)
	assert.Nil(t, report.PriceMeter)
	assert.NotNil(t, report.Validation)
}

func TestRunStudyPropagatesNarrativeError(t *testing.T) {
	narrative := &stubNarrative{err: errors.New("generator offline")}
	engine := NewEngine(persona.NewDefaultClusterer(), narrative)

	_, err := engine.RunStudy(context.Background(), studyInputs(t, 200))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generator offline")
}

func TestRunStudyWithoutNarrativeGenerator(t *testing.T) {
	engine := NewEngine(persona.NewDefaultClusterer(), nil)
	report, err := engine.RunStudy(context.Background(), studyInputs(t, 200))
	require.NoError(t, err)

	require.NotEmpty(t, report.Personas)
	for _, section := range report.Personas {
		assert.Nil(t, section.Narrative)
	}
}
