package persona

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopanel/domain/core"
	"gopanel/domain/survey"
)

func respondent(ageBracket, gender, income string, age int, intent, price float64) survey.Response {
	return survey.Response{
		RespondentID: core.RespondentID(core.NewID()),
		Demographics: survey.Demographics{
			Age:           age,
			AgeBracket:    ageBracket,
			Gender:        gender,
			IncomeBracket: income,
			LocationType:  "urban",
		},
		Psychographics: survey.Psychographics{
			Values:   []string{"quality", "sustainability"},
			Concerns: []string{"price"},
		},
		PurchaseIntent:  intent,
		AcceptablePrice: price,
	}
}

func cohort(n int, ageBracket, gender, income string) []survey.Response {
	out := make([]survey.Response, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, respondent(ageBracket, gender, income, 30+i, 4, 100))
	}
	return out
}

func TestClusterGroupsByDemographicKey(t *testing.T) {
	responses := append(cohort(8, "25-34", "female", "50-75k"),
		cohort(6, "35-44", "male", "75-100k")...)

	clusters := NewDefaultClusterer().Cluster(responses)
	require.Len(t, clusters, 2)

	assert.Equal(t, "25-34|female|50-75k", clusters[0].Key)
	assert.Equal(t, 8, clusters[0].Size)
	assert.Equal(t, "35-44|male|75-100k", clusters[1].Key)
	assert.Equal(t, 6, clusters[1].Size)
}

func TestClusterDropsSmallGroups(t *testing.T) {
	responses := append(cohort(5, "25-34", "female", "50-75k"),
		cohort(4, "45-54", "other", "100k+")...)

	clusters := NewDefaultClusterer().Cluster(responses)
	require.Len(t, clusters, 1)
	assert.Equal(t, "25-34|female|50-75k", clusters[0].Key)
}

func TestClusterAggregates(t *testing.T) {
	responses := []survey.Response{
		respondent("25-34", "female", "50-75k", 26, 5, 120),
		respondent("25-34", "female", "50-75k", 28, 4, 100),
		respondent("25-34", "female", "50-75k", 30, 3, 80),
		respondent("25-34", "female", "50-75k", 32, 4, 100),
		respondent("25-34", "female", "50-75k", 34, 4, 100),
	}
	// One suburban respondent stays outvoted by the urban majority.
	responses[0].Demographics.LocationType = "suburban"
	responses[1].Psychographics.Concerns = []string{"privacy", "price"}

	clusters := NewDefaultClusterer().Cluster(responses)
	require.Len(t, clusters, 1)

	c := clusters[0]
	assert.InDelta(t, 30.0, c.MeanAge, 1e-9)
	assert.InDelta(t, 4.0, c.MeanPurchaseIntent, 1e-9)
	assert.InDelta(t, 100.0, c.MeanAcceptablePrice, 1e-9)
	assert.Equal(t, "urban", c.ModalLocation)
	assert.Equal(t, []string{"quality", "sustainability"}, c.TopValues)
	assert.Equal(t, []string{"price", "privacy"}, c.TopConcerns)
	assert.Len(t, c.RespondentIDs, 5)
}

func TestClusterCapsAtMaxAndSortsDeterministically(t *testing.T) {
	var responses []survey.Response
	for i := 0; i < 7; i++ {
		bracket := fmt.Sprintf("%d0-%d9", i+2, i+2)
		responses = append(responses, cohort(5+i, bracket, "female", "50-75k")...)
	}

	clusterer := NewDefaultClusterer()
	clusters := clusterer.Cluster(responses)
	require.Len(t, clusters, DefaultMaxClusters)

	for i := 1; i < len(clusters); i++ {
		assert.GreaterOrEqual(t, clusters[i-1].Size, clusters[i].Size)
	}

	again := clusterer.Cluster(responses)
	for i := range clusters {
		assert.Equal(t, clusters[i].Key, again[i].Key)
	}
}

func TestClusterSizeTieBreaksOnKey(t *testing.T) {
	responses := append(cohort(6, "35-44", "male", "75-100k"),
		cohort(6, "25-34", "female", "50-75k")...)

	clusters := NewDefaultClusterer().Cluster(responses)
	require.Len(t, clusters, 2)
	assert.Equal(t, "25-34|female|50-75k", clusters[0].Key)
	assert.Equal(t, "35-44|male|75-100k", clusters[1].Key)
}

func TestClusterEmptyInput(t *testing.T) {
	clusters := NewDefaultClusterer().Cluster(nil)
	assert.Empty(t, clusters)
}

func TestTopTagsTieBreaksAlphabetically(t *testing.T) {
	tags := topTags(map[string]int{"b": 2, "a": 2, "c": 3, "d": 1}, 3)
	assert.Equal(t, []string{"c", "a", "b"}, tags)
}
