package excel

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gopanel/domain/core"
	"gopanel/domain/survey"
	"gopanel/internal"
	apperrors "gopanel/internal/errors"
)

// Expected response file columns. Header matching is case-insensitive and
// tolerant of spaces vs underscores. Tag columns (values, motivations,
// concerns) hold semicolon-separated lists.
//
//	respondent_id, submitted_at, age, gender, income_bracket, location_type,
//	education, occupation, values, motivations, concerns,
//	channel_preference, category_usage,
//	purchase_intent (1-5), price_sensitivity (1-10), brand_preference (1-5),
//	acceptable_price,
//	maxdiff_best, maxdiff_worst,
//	price_too_cheap, price_cheap, price_expensive, price_too_expensive

// ResponseReader reads survey responses from xlsx or csv files. Rows whose
// scale answers are all blank or non-numeric are dropped here so analyzers
// only ever see usable responses.
type ResponseReader struct {
	config   ReaderConfig
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewResponseReader creates a reader that handles both Excel and CSV files
func NewResponseReader(config ReaderConfig) *ResponseReader {
	if config.SheetName == "" {
		config.SheetName = DefaultReaderConfig().SheetName
	}
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		fileType = "csv"
	}
	return &ResponseReader{
		config:   config,
		fileType: fileType,
		logger:   internal.DefaultLogger.Component("excel"),
	}
}

// ReadResponses reads and maps the configured file into survey responses
func (r *ResponseReader) ReadResponses(ctx context.Context) ([]survey.Response, error) {
	if _, err := os.Stat(r.config.FilePath); os.IsNotExist(err) {
		return nil, apperrors.InvalidInput("response file not found: " + r.config.FilePath)
	}

	var (
		data *SheetData
		err  error
	)
	switch r.fileType {
	case "csv":
		data, err = r.readCSV()
	default:
		data, err = r.readExcel()
	}
	if err != nil {
		return nil, err
	}

	responses, skipped := r.mapResponses(data)
	r.logger.Info("loaded %d responses from %s (%d rows skipped)",
		len(responses), r.config.FilePath, skipped)
	return responses, nil
}

func (r *ResponseReader) readExcel() (*SheetData, error) {
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows(r.config.SheetName)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read sheet %s", r.config.SheetName)
	}
	if len(rows) < 2 {
		return nil, apperrors.InvalidInput("response file needs a header row and at least one data row")
	}
	return r.processRows(rows), nil
}

func (r *ResponseReader) readCSV() (*SheetData, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read CSV file")
	}
	if len(rows) < 2 {
		return nil, apperrors.InvalidInput("response file needs a header row and at least one data row")
	}
	return r.processRows(rows), nil
}

// processRows converts raw string rows into header-keyed row maps
func (r *ResponseReader) processRows(rows [][]string) *SheetData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = normalizeHeader(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetData{Headers: headers, Rows: dataRows}
}

// mapResponses converts raw rows into responses, dropping unusable rows
func (r *ResponseReader) mapResponses(data *SheetData) ([]survey.Response, int) {
	responses := make([]survey.Response, 0, len(data.Rows))
	skipped := 0

	for i, row := range data.Rows {
		resp, ok := r.mapRow(i, row)
		if !ok {
			skipped++
			continue
		}
		responses = append(responses, resp)
	}
	return responses, skipped
}

func (r *ResponseReader) mapRow(idx int, row RawRowData) (survey.Response, bool) {
	intent := scaleValue(row, "purchase_intent", 1, 5)
	sensitivity := scaleValue(row, "price_sensitivity", 1, 10)
	brand := scaleValue(row, "brand_preference", 1, 5)

	// A row with no usable scale answer at all carries nothing for any
	// analyzer downstream.
	if intent == 0 && sensitivity == 0 && brand == 0 {
		return survey.Response{}, false
	}

	respondentID := row["respondent_id"]
	if respondentID == "" {
		respondentID = "row_" + strconv.Itoa(idx+2)
	}

	resp := survey.Response{
		RespondentID: core.RespondentID(respondentID),
		SubmittedAt:  parseTimestamp(row["submitted_at"]),
		Demographics: survey.Demographics{
			Age:           intValue(row, "age"),
			Gender:        row["gender"],
			IncomeBracket: row["income_bracket"],
			LocationType:  row["location_type"],
			Education:     row["education"],
			Occupation:    row["occupation"],
		},
		Psychographics: survey.Psychographics{
			Values:      splitTags(row["values"]),
			Motivations: splitTags(row["motivations"]),
			Concerns:    splitTags(row["concerns"]),
		},
		Behavioral: survey.Behavioral{
			ChannelPreference: row["channel_preference"],
			CategoryUsage:     row["category_usage"],
		},
		PurchaseIntent:   intent,
		PriceSensitivity: sensitivity,
		BrandPreference:  brand,
		AcceptablePrice:  positiveValue(row, "acceptable_price"),
	}
	resp.Demographics.AgeBracket = ageBracket(resp.Demographics.Age)

	if best, worst := row["maxdiff_best"], row["maxdiff_worst"]; best != "" && worst != "" {
		resp.MaxDiff = &survey.MaxDiffChoice{
			MostImportant:  best,
			LeastImportant: worst,
		}
	}

	meter := survey.PriceMeterAnswers{
		TooCheap:     positiveValue(row, "price_too_cheap"),
		Cheap:        positiveValue(row, "price_cheap"),
		Expensive:    positiveValue(row, "price_expensive"),
		TooExpensive: positiveValue(row, "price_too_expensive"),
	}
	if meter.TooCheap > 0 || meter.Cheap > 0 || meter.Expensive > 0 || meter.TooExpensive > 0 {
		resp.PriceMeter = &meter
	}

	return resp, true
}

// normalizeHeader lowercases and converts spaces/dashes to underscores
func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// scaleValue parses a bounded scale answer; anything blank, non-numeric,
// NaN, or outside the scale reads as unanswered (zero).
func scaleValue(row RawRowData, key string, lo, hi float64) float64 {
	v, err := strconv.ParseFloat(row[key], 64)
	if err != nil || math.IsNaN(v) || v < lo || v > hi {
		return 0
	}
	return v
}

// positiveValue parses a price-like value; non-positive reads as unanswered
func positiveValue(row RawRowData, key string) float64 {
	v, err := strconv.ParseFloat(row[key], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func intValue(row RawRowData, key string) int {
	v, err := strconv.Atoi(row[key])
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseTimestamp accepts RFC3339 or date-only cells; anything else reads
// as a zero timestamp.
func parseTimestamp(raw string) core.Timestamp {
	if raw == "" {
		return core.Timestamp{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return core.NewTimestamp(t)
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return core.NewTimestamp(t)
	}
	return core.Timestamp{}
}

func ageBracket(age int) string {
	switch {
	case age <= 0:
		return ""
	case age < 25:
		return "18-24"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	case age < 65:
		return "55-64"
	default:
		return "65+"
	}
}
