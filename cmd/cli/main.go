package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gopanel/adapters/excel"
	"gopanel/adapters/narrative/heuristic"
	"gopanel/domain/core"
	"gopanel/domain/survey"
	"gopanel/internal/analysis"
	"gopanel/internal/bayes"
	"gopanel/internal/config"
	"gopanel/internal/maxdiff"
	"gopanel/internal/persona"
	"gopanel/internal/pricing"
	"gopanel/internal/sampling"
	"gopanel/internal/testkit"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gopanel-cli",
		Short: "Survey analytics CLI for sample planning, validation and pricing studies",
	}

	rootCmd.AddCommand(
		newSampleSizeCmd(),
		newSegmentsCmd(),
		newValidateCmd(),
		newPSMCmd(),
		newMaxDiffCmd(),
		newPersonasCmd(),
		newPriceCmd(),
		newGenerateCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSampleSizeCmd() *cobra.Command {
	var inputs sampling.Inputs

	cmd := &cobra.Command{
		Use:   "samplesize",
		Short: "Compute the recommended sample size for a survey",
		Long: `Compute sample size with finite population correction, power profile,
cost estimate and quality tier.

Example: gopanel-cli samplesize --population 50000 --confidence 0.95 --margin 0.05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc := sampling.NewCalculator(inputs)
			if problems := calc.Validate(); len(problems) > 0 {
				return fmt.Errorf("invalid inputs:\n  - %s", strings.Join(problems, "\n  - "))
			}

			result := calc.Calculate()
			fmt.Printf("\n=== SAMPLE SIZE CALCULATION ===\n")
			fmt.Printf("Population: %d | Confidence: %.2f (z=%.3f) | Margin: %.3f\n",
				inputs.PopulationSize, inputs.ConfidenceLevel, result.ZScore, inputs.MarginOfError)
			fmt.Printf("Sample (infinite population): %d\n", result.SampleSizeInfinite)
			fmt.Printf("Sample (finite corrected):    %d\n", result.SampleSizeFinite)
			fmt.Printf("Recommended invitations:      %d\n", result.RecommendedSample)
			fmt.Printf("Quality tier: %s (%.2f)\n", result.Quality.Label, result.Quality.Score)
			fmt.Printf("Power: %.2f | Alpha: %.2f | Detectable effect: %.3f\n",
				result.Power.Power, result.Power.Alpha, result.Power.EffectSize)
			fmt.Printf("Cost: $%.2f total ($%.2f per response, $%.2f per segment)\n",
				result.Cost.TotalCost, result.Cost.CostPerResponse, result.Cost.CostPerSegment)
			return nil
		},
	}

	cmd.Flags().IntVar(&inputs.PopulationSize, "population", 0, "Target population size (0 = unknown)")
	cmd.Flags().Float64Var(&inputs.ConfidenceLevel, "confidence", 0.95, "Confidence level: 0.90, 0.95 or 0.99")
	cmd.Flags().Float64Var(&inputs.MarginOfError, "margin", 0.05, "Margin of error as a fraction")
	cmd.Flags().Float64Var(&inputs.ExpectedProportion, "proportion", 0.5, "Expected proportion")
	cmd.Flags().Float64Var(&inputs.ResponseRate, "response-rate", 0, "Expected response rate (0 = default)")

	return cmd
}

func newSegmentsCmd() *cobra.Command {
	var population int
	var confidence, margin float64

	cmd := &cobra.Command{
		Use:   "segments [name:percent ...]",
		Short: "Plan per-segment sample sizes and score feasibility",
		Long: `Plan sample sizes for each named segment of the population.

Example: gopanel-cli segments "urban:40" "suburban:35" "rural:25" --population 100000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			segments := make([]sampling.Segment, 0, len(args))
			for _, arg := range args {
				name, pctStr, found := strings.Cut(arg, ":")
				if !found {
					return fmt.Errorf("invalid segment %q (expected name:percent)", arg)
				}
				pct, err := strconv.ParseFloat(pctStr, 64)
				if err != nil {
					return fmt.Errorf("invalid percent in %q: %w", arg, err)
				}
				segments = append(segments, sampling.Segment{
					Name:                name,
					PercentOfPopulation: pct,
					ConfidenceLevel:     confidence,
					MarginOfError:       margin,
					ExpectedProportion:  0.5,
				})
			}

			plan := sampling.NewSegmentationCalculator(population).Plan(segments)

			fmt.Printf("\n=== SEGMENTATION PLAN ===\n")
			for _, seg := range plan.Segments {
				fmt.Printf("%-20s %5.1f%% of population -> %d responses\n",
					seg.Name, seg.PercentOfPopulation, seg.RecommendedSampleSize)
			}
			fmt.Printf("Total sample: %d | Feasibility: %d/100\n", plan.TotalSampleSize, plan.FeasibilityScore)
			for _, adv := range plan.Advisories {
				fmt.Printf("  ! %s\n", adv)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&population, "population", 0, "Total population size")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Per-segment confidence level")
	cmd.Flags().Float64Var(&margin, "margin", 0.05, "Per-segment margin of error")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run Bayesian validation over the three core survey metrics",
		Long: `Validate purchase intent, price sensitivity and brand preference with
conjugate Bayesian updates, credible intervals and multiple-comparison
correction.

Example: gopanel-cli validate --file responses.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			responses, err := loadResponses(cmd.Context(), file)
			if err != nil {
				return err
			}

			result := bayes.NewValidator().ValidateComprehensive(bayes.MetricSamples{
				PurchaseIntent:   survey.PurchaseIntents(responses),
				PriceSensitivity: survey.PriceSensitivities(responses),
				BrandPreference:  survey.BrandPreferences(responses),
			})

			fmt.Printf("\n=== BAYESIAN VALIDATION ===\n")
			printValidation("Purchase intent", result.PurchaseIntent)
			printValidation("Price sensitivity", result.PriceSensitivity)
			printValidation("Brand preference", result.BrandPreference)
			fmt.Printf("\nOverall confidence: %.3f\n", result.OverallConfidence)
			fmt.Printf("\n=== RECOMMENDATIONS ===\n")
			for _, rec := range result.Recommendations {
				fmt.Printf("  - %s\n", rec)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Response file (overrides RESPONSES_FILE)")
	return cmd
}

func printValidation(label string, r bayes.ValidationResult) {
	fmt.Printf("%-18s posterior %.3f [%.3f, %.3f] | confidence %.3f | n=%d\n",
		label+":", r.PosteriorMean, r.CredibleInterval.Lower, r.CredibleInterval.Upper,
		r.Confidence, r.SampleSize)
	fmt.Printf("%-18s effect %.3f | robustness %.2f | corrected alpha %.4f\n",
		"", r.EffectSize, r.Robustness, r.MultipleTestingCorrection)
}

func newPSMCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "psm",
		Short: "Run Van Westendorp price sensitivity analysis",
		Long: `Compute the optimal price point, indifference price and acceptable range
from the four price meter questions.

Example: gopanel-cli psm --file responses.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			responses, err := loadResponses(cmd.Context(), file)
			if err != nil {
				return err
			}

			tooCheap, cheap, expensive, tooExpensive := survey.PriceMeterBands(responses)
			result, err := pricing.NewVanWestendorpAnalyzer(tooCheap, cheap, expensive, tooExpensive).Analyze()
			if err != nil {
				return err
			}

			fmt.Printf("\n=== VAN WESTENDORP PRICE ANALYSIS ===\n")
			fmt.Printf("Optimal price point:  $%.2f\n", result.OptimalPricePoint)
			fmt.Printf("Indifference price:   $%.2f\n", result.IndifferencePrice)
			fmt.Printf("Acceptable range:     $%.2f - $%.2f\n",
				result.AcceptableRange.Lower, result.AcceptableRange.Upper)
			fmt.Printf("Sensitivity index:    %.3f\n", result.PriceSensitivityIndex)
			fmt.Printf("Sample size: %d | Data quality: %.2f\n", result.SampleSize, result.DataQualityScore)

			fmt.Printf("\n=== INSIGHTS ===\n")
			for _, insight := range result.GenerateInsights() {
				fmt.Printf("  - %s\n", insight)
			}
			fmt.Printf("\n=== RECOMMENDATIONS ===\n")
			for _, rec := range result.GenerateRecommendations() {
				fmt.Printf("  - %s\n", rec)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Response file (overrides RESPONSES_FILE)")
	return cmd
}

func newMaxDiffCmd() *cobra.Command {
	var file, featuresCSV string

	cmd := &cobra.Command{
		Use:   "maxdiff",
		Short: "Rank features from MaxDiff best/worst choices",
		Long: `Compute count-based utilities, shares of preference and significance
buckets for the questionnaire's feature list.

Example: gopanel-cli maxdiff --features "battery,camera,price,screen" --file responses.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			features := splitCSVFlag(featuresCSV)
			responses, err := loadResponses(cmd.Context(), file)
			if err != nil {
				return err
			}

			result, err := maxdiff.NewAnalyzer(features, survey.MaxDiffChoices(responses)).Analyze()
			if err != nil {
				return err
			}

			fmt.Printf("\n=== MAXDIFF FEATURE RANKING ===\n")
			for _, f := range result.Features {
				fmt.Printf("%d. %-24s utility %+.3f | share %5.1f%% | best %d / worst %d | sig %.2f\n",
					f.Rank, f.Feature, f.UtilityScore, f.ShareOfPreference,
					f.TimesChosenBest, f.TimesChosenWorst, f.SignificanceLevel)
			}
			fmt.Printf("\nSample: %d | Completion: %.0f%% | Quality: %.2f\n",
				result.SampleSize, result.CompletionRate*100, result.DataQualityScore)
			fmt.Printf("Significant pairwise differences: %d\n", len(result.SignificantDifferences))

			fmt.Printf("\n=== INSIGHTS ===\n")
			for _, insight := range result.GenerateInsights() {
				fmt.Printf("  - %s\n", insight)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Response file (overrides RESPONSES_FILE)")
	cmd.Flags().StringVar(&featuresCSV, "features", "", "Comma-separated feature list shown to respondents")
	_ = cmd.MarkFlagRequired("features")
	return cmd
}

func newPersonasCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "personas",
		Short: "Cluster respondents into personas with generated narratives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			responses, err := loadResponses(cmd.Context(), file)
			if err != nil {
				return err
			}

			clusterer := persona.NewClusterer(cfg.Analysis.MinClusterSize, cfg.Analysis.MaxPersonas)
			generator := heuristic.NewGenerator()
			clusters := clusterer.Cluster(responses)

			fmt.Printf("\n=== PERSONA CLUSTERS (%d) ===\n", len(clusters))
			for i, cluster := range clusters {
				narrative, err := generator.GeneratePersonaNarrative(cmd.Context(), cluster.Profile())
				if err != nil {
					return err
				}
				fmt.Printf("\n%d. %s (%d respondents)\n", i+1, narrative.Name, cluster.Size)
				fmt.Printf("   %s\n", narrative.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Response file (overrides RESPONSES_FILE)")
	return cmd
}

func newPriceCmd() *cobra.Command {
	profile := pricing.BuyerProfile{}
	var online bool

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Predict the optimal price for a buyer profile",
		Long: `Predict optimal price, demand curve, elasticity and conversion for one
buyer profile. A trained model is used when configured and ready; the
closed-form statistical model answers otherwise.

Example: gopanel-cli price --base-price 100 --sensitivity 5 --loyalty 0.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			profile.OnlineChannel = online

			optimizer := pricing.NewOptimizer(cfg.Pricing.BaseConversionRate, nil)
			prediction := optimizer.PredictOptimalPrice(profile)

			fmt.Printf("\n=== PRICE PREDICTION (%s) ===\n", prediction.ModelName)
			fmt.Printf("Optimal price: $%.2f\n", prediction.OptimalPrice)
			fmt.Printf("Elasticity: %.2f | Conversion: %.1f%% | Confidence: %.2f\n",
				prediction.Elasticity, prediction.ConversionProbability*100, prediction.Confidence)

			fmt.Printf("\n=== DEMAND CURVE ===\n")
			for _, point := range prediction.DemandCurve {
				fmt.Printf("  $%8.2f  demand index %.2f\n", point.Price, point.Demand)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&profile.BasePrice, "base-price", 100, "Reference price")
	cmd.Flags().Float64Var(&profile.PriceSensitivity, "sensitivity", 5, "Price sensitivity 1-10")
	cmd.Flags().Float64Var(&profile.BrandLoyalty, "loyalty", 0.5, "Brand loyalty 0-1")
	cmd.Flags().IntVar(&profile.Age, "age", 35, "Buyer age")
	cmd.Flags().Float64Var(&profile.IncomeLevel, "income", 3, "Income level 1-5")
	cmd.Flags().Float64Var(&profile.CategoryUsage, "usage", 0.5, "Category usage 0-1")
	cmd.Flags().BoolVar(&online, "online", true, "Primarily an online buyer")
	cmd.Flags().Float64Var(&profile.Competition, "competition", 0.5, "Competitive pressure 0-1")
	cmd.Flags().Float64Var(&profile.SeasonalDemand, "seasonal", 0.5, "Seasonal demand 0-1")
	cmd.Flags().Float64Var(&profile.ProductQuality, "quality", 0.7, "Perceived quality 0-1")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var count int
	var seed int64
	var output, featuresCSV string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic response panel as CSV",
		Long: `Generate a deterministic synthetic panel for demos and pipeline testing.
The output matches the column layout expected by every file-reading command.

Example: gopanel-cli generate --count 500 --seed 42 --output responses.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			genConfig := testkit.DefaultRespondentConfig()
			genConfig.RespondentCount = count
			genConfig.Seed = seed
			if features := splitCSVFlag(featuresCSV); len(features) > 0 {
				genConfig.MaxDiffFeatures = features
			}

			responses := testkit.NewRespondentGenerator(genConfig).Generate()
			if err := writeResponsesCSV(output, responses); err != nil {
				return err
			}

			fmt.Printf("Wrote %d synthetic responses to %s (seed %d)\n", len(responses), output, seed)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 500, "Number of respondents")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic panels")
	cmd.Flags().StringVar(&output, "output", "responses.csv", "Output CSV path")
	cmd.Flags().StringVar(&featuresCSV, "features", "", "Comma-separated MaxDiff feature list")

	return cmd
}

func newReportCmd() *cobra.Command {
	var file, featuresCSV, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full study analysis and emit a JSON report",
		Long: `Run validation, personas, MaxDiff and price meter analysis over one
response set and assemble a single report. Sections whose inputs are
absent from the questionnaire are skipped.

Example: gopanel-cli report --file responses.xlsx --features "battery,camera,price,screen"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			responses, err := loadResponses(cmd.Context(), file)
			if err != nil {
				return err
			}

			engine := analysis.NewEngine(
				persona.NewClusterer(cfg.Analysis.MinClusterSize, cfg.Analysis.MaxPersonas),
				heuristic.NewGenerator(),
			)
			report, err := engine.RunStudy(cmd.Context(), analysis.StudyInputs{
				StudyID:         core.StudyID(core.NewID()),
				Responses:       responses,
				MaxDiffFeatures: splitCSVFlag(featuresCSV),
			})
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Report %s written to %s (%d responses analyzed)\n",
				report.ReportID, output, report.SampleSize)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Response file (overrides RESPONSES_FILE)")
	cmd.Flags().StringVar(&featuresCSV, "features", "", "Comma-separated MaxDiff feature list")
	cmd.Flags().StringVar(&output, "output", "", "Write the JSON report here instead of stdout")

	return cmd
}

// loadResponses reads the response file from the flag or configuration.
func loadResponses(ctx context.Context, file string) ([]survey.Response, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if file == "" {
		file = cfg.Data.ResponsesFile
	}
	if file == "" {
		return nil, fmt.Errorf("no response file: pass --file or set RESPONSES_FILE")
	}

	reader := excel.NewResponseReader(excel.ReaderConfig{
		FilePath:  file,
		SheetName: cfg.Data.SheetName,
	})
	return reader.ReadResponses(ctx)
}

func splitCSVFlag(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// writeResponsesCSV writes the panel in the reader's column layout.
func writeResponsesCSV(path string, responses []survey.Response) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"respondent_id", "submitted_at", "age", "gender", "income_bracket",
		"location_type", "education", "occupation", "values", "motivations",
		"concerns", "channel_preference", "category_usage",
		"purchase_intent", "price_sensitivity", "brand_preference", "acceptable_price",
		"maxdiff_best", "maxdiff_worst",
		"price_too_cheap", "price_cheap", "price_expensive", "price_too_expensive",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range responses {
		best, worst := "", ""
		if r.MaxDiff != nil {
			best, worst = r.MaxDiff.MostImportant, r.MaxDiff.LeastImportant
		}
		meter := [4]string{}
		if r.PriceMeter != nil {
			meter[0] = formatPrice(r.PriceMeter.TooCheap)
			meter[1] = formatPrice(r.PriceMeter.Cheap)
			meter[2] = formatPrice(r.PriceMeter.Expensive)
			meter[3] = formatPrice(r.PriceMeter.TooExpensive)
		}

		row := []string{
			string(r.RespondentID),
			r.SubmittedAt.String(),
			strconv.Itoa(r.Demographics.Age),
			r.Demographics.Gender,
			r.Demographics.IncomeBracket,
			r.Demographics.LocationType,
			r.Demographics.Education,
			r.Demographics.Occupation,
			strings.Join(r.Psychographics.Values, "; "),
			strings.Join(r.Psychographics.Motivations, "; "),
			strings.Join(r.Psychographics.Concerns, "; "),
			r.Behavioral.ChannelPreference,
			r.Behavioral.CategoryUsage,
			formatScale(r.PurchaseIntent),
			formatScale(r.PriceSensitivity),
			formatScale(r.BrandPreference),
			formatPrice(r.AcceptablePrice),
			best,
			worst,
			meter[0], meter[1], meter[2], meter[3],
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatScale(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func formatPrice(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
