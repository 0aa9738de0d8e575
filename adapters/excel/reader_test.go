package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `Respondent ID,Submitted At,Age,Gender,Income Bracket,Location Type,Values,Concerns,Purchase Intent,Price Sensitivity,Brand Preference,Acceptable Price,MaxDiff Best,MaxDiff Worst,Price Too Cheap,Price Cheap,Price Expensive,Price Too Expensive
r-001,2026-03-01,29,female,50-75k,urban,quality; sustainability,price,4,6,3,95,battery life,screen size,20,45,110,160
r-002,2026-03-02,41,male,100k+,suburban,convenience,privacy,5,3,4,120,,,,,,
r-003,,not-a-number,other,25-50k,rural,,,2,8,2,60,camera quality,price,15,40,90,140
,2026-03-04,52,female,75-100k,urban,status,durability,3,5,3,,,,,,,
bad-row,2026-03-05,33,male,50-75k,urban,,,,,,,,,,,,
`

func TestReadResponsesCSV(t *testing.T) {
	path := writeCSV(t, sampleCSV)
	reader := NewResponseReader(ReaderConfig{FilePath: path})

	responses, err := reader.ReadResponses(context.Background())
	require.NoError(t, err)

	// The all-blank-scales row is dropped at the boundary.
	require.Len(t, responses, 4)

	first := responses[0]
	assert.Equal(t, "r-001", string(first.RespondentID))
	assert.False(t, first.SubmittedAt.IsZero())
	assert.Equal(t, 29, first.Demographics.Age)
	assert.Equal(t, "25-34", first.Demographics.AgeBracket)
	assert.Equal(t, "50-75k", first.Demographics.IncomeBracket)
	assert.Equal(t, []string{"quality", "sustainability"}, first.Psychographics.Values)
	assert.Equal(t, 4.0, first.PurchaseIntent)
	assert.Equal(t, 6.0, first.PriceSensitivity)
	assert.Equal(t, 95.0, first.AcceptablePrice)

	require.NotNil(t, first.MaxDiff)
	assert.Equal(t, "battery life", first.MaxDiff.MostImportant)
	assert.Equal(t, "screen size", first.MaxDiff.LeastImportant)

	require.NotNil(t, first.PriceMeter)
	assert.Equal(t, 20.0, first.PriceMeter.TooCheap)
	assert.Equal(t, 160.0, first.PriceMeter.TooExpensive)

	// Row without maxdiff or price meter answers carries nil sections.
	second := responses[1]
	assert.Nil(t, second.MaxDiff)
	assert.Nil(t, second.PriceMeter)

	// Non-numeric age reads as unanswered, bracket stays empty.
	third := responses[2]
	assert.Equal(t, 0, third.Demographics.Age)
	assert.Equal(t, "", third.Demographics.AgeBracket)

	// Missing respondent ID falls back to the spreadsheet row number.
	fourth := responses[3]
	assert.Equal(t, "row_5", string(fourth.RespondentID))
}

func TestReadResponsesMissingFile(t *testing.T) {
	reader := NewResponseReader(ReaderConfig{FilePath: "/nonexistent/responses.csv"})
	_, err := reader.ReadResponses(context.Background())
	assert.Error(t, err)
}

func TestReadResponsesHeaderOnly(t *testing.T) {
	path := writeCSV(t, "respondent_id,purchase_intent\n")
	reader := NewResponseReader(ReaderConfig{FilePath: path})
	_, err := reader.ReadResponses(context.Background())
	assert.Error(t, err)
}

func TestScaleValueBounds(t *testing.T) {
	row := RawRowData{"purchase_intent": "7"}
	assert.Equal(t, 0.0, scaleValue(row, "purchase_intent", 1, 5))

	row["purchase_intent"] = "5"
	assert.Equal(t, 5.0, scaleValue(row, "purchase_intent", 1, 5))

	row["purchase_intent"] = "NaN"
	assert.Equal(t, 0.0, scaleValue(row, "purchase_intent", 1, 5))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "price_too_cheap", normalizeHeader(" Price Too-Cheap "))
}
