package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gopanel/domain/core"
	"gopanel/domain/survey"
	"gopanel/internal"
	"gopanel/internal/bayes"
	apperrors "gopanel/internal/errors"
	"gopanel/internal/maxdiff"
	"gopanel/internal/persona"
	"gopanel/internal/pricing"
	"gopanel/ports"
)

// StudyInputs carries everything a full study run needs. MaxDiffFeatures is
// the feature list the questionnaire exposed; leave it empty when the study
// had no MaxDiff section.
type StudyInputs struct {
	StudyID         core.StudyID      `json:"study_id"`
	Responses       []survey.Response `json:"responses"`
	MaxDiffFeatures []string          `json:"maxdiff_features"`
}

// PersonaSection pairs a cluster with its generated narrative.
type PersonaSection struct {
	Cluster   persona.Cluster         `json:"cluster"`
	Narrative *ports.PersonaNarrative `json:"narrative,omitempty"`
}

// StudyReport is the assembled output of one study run. Sections whose
// inputs were absent from the questionnaire stay nil.
type StudyReport struct {
	ReportID    core.ReportID                `json:"report_id"`
	StudyID     core.StudyID                 `json:"study_id"`
	GeneratedAt core.Timestamp               `json:"generated_at"`
	SampleSize  int                          `json:"sample_size"`
	Validation  *bayes.ComprehensiveResult   `json:"validation,omitempty"`
	Personas    []PersonaSection             `json:"personas,omitempty"`
	MaxDiff     *maxdiff.Result              `json:"max_diff,omitempty"`
	PriceMeter  *pricing.VanWestendorpResult `json:"price_meter,omitempty"`
}

// Engine fans a response set out to the individual analyzers and assembles
// the study report. The sections are independent so they run concurrently.
type Engine struct {
	clusterer *persona.Clusterer
	narrative ports.NarrativeGeneratorPort
	logger    *internal.Logger
}

// NewEngine creates a study engine
func NewEngine(clusterer *persona.Clusterer, narrative ports.NarrativeGeneratorPort) *Engine {
	return &Engine{
		clusterer: clusterer,
		narrative: narrative,
		logger:    internal.DefaultLogger.Component("analysis"),
	}
}

// RunStudy runs every applicable analyzer over the responses. Each run gets
// a fresh validator so multiple-comparison correction counts only this
// study's tests.
func (e *Engine) RunStudy(ctx context.Context, inputs StudyInputs) (*StudyReport, error) {
	if len(inputs.Responses) == 0 {
		return nil, apperrors.InsufficientData("study has no responses")
	}

	report := &StudyReport{
		ReportID:    core.ReportID(core.NewID()),
		StudyID:     inputs.StudyID,
		GeneratedAt: core.Now(),
		SampleSize:  len(inputs.Responses),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report.Validation = e.runValidation(inputs.Responses)
		return nil
	})
	g.Go(func() error {
		personas, err := e.runPersonas(ctx, inputs.Responses)
		if err != nil {
			return err
		}
		report.Personas = personas
		return nil
	})
	g.Go(func() error {
		result, err := e.runMaxDiff(inputs)
		if err != nil {
			return err
		}
		report.MaxDiff = result
		return nil
	})
	g.Go(func() error {
		report.PriceMeter = e.runPriceMeter(inputs.Responses)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("study %s analyzed: %d responses, %d personas",
		inputs.StudyID, report.SampleSize, len(report.Personas))
	return report, nil
}

func (e *Engine) runValidation(responses []survey.Response) *bayes.ComprehensiveResult {
	samples := bayes.MetricSamples{
		PurchaseIntent:   survey.PurchaseIntents(responses),
		PriceSensitivity: survey.PriceSensitivities(responses),
		BrandPreference:  survey.BrandPreferences(responses),
	}
	result := bayes.NewValidator().ValidateComprehensive(samples)
	return &result
}

func (e *Engine) runPersonas(ctx context.Context, responses []survey.Response) ([]PersonaSection, error) {
	clusters := e.clusterer.Cluster(responses)
	sections := make([]PersonaSection, 0, len(clusters))

	for _, cluster := range clusters {
		section := PersonaSection{Cluster: cluster}
		if e.narrative != nil {
			narrative, err := e.narrative.GeneratePersonaNarrative(ctx, cluster.Profile())
			if err != nil {
				return nil, apperrors.Wrapf(err, "narrative for persona %s", cluster.Key)
			}
			section.Narrative = narrative
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// runMaxDiff analyzes the MaxDiff section when the study had one. No
// features or no answered choices means the section was absent, not an
// error.
func (e *Engine) runMaxDiff(inputs StudyInputs) (*maxdiff.Result, error) {
	if len(inputs.MaxDiffFeatures) == 0 {
		return nil, nil
	}
	choices := survey.MaxDiffChoices(inputs.Responses)
	if len(choices) == 0 {
		e.logger.Warn("maxdiff features configured but no responses answered the section")
		return nil, nil
	}
	return maxdiff.NewAnalyzer(inputs.MaxDiffFeatures, choices).Analyze()
}

// runPriceMeter analyzes price perception when every band has answers.
func (e *Engine) runPriceMeter(responses []survey.Response) *pricing.VanWestendorpResult {
	tooCheap, cheap, expensive, tooExpensive := survey.PriceMeterBands(responses)
	if len(tooCheap) == 0 || len(cheap) == 0 || len(expensive) == 0 || len(tooExpensive) == 0 {
		return nil
	}

	result, err := pricing.NewVanWestendorpAnalyzer(tooCheap, cheap, expensive, tooExpensive).Analyze()
	if err != nil {
		e.logger.Warn("price meter analysis skipped: %v", err)
		return nil
	}
	return result
}
