package persona

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"gopanel/domain/core"
	"gopanel/domain/survey"
	"gopanel/ports"
)

const (
	// DefaultMinClusterSize drops groups too small to describe as a persona.
	DefaultMinClusterSize = 5
	// DefaultMaxClusters caps how many personas a study reports.
	DefaultMaxClusters = 5

	topTagCount = 3
)

// Cluster is a named respondent segment with aggregated characteristics.
// Clusters are recomputed fresh from the response set on every call; there
// is no persisted cluster identity.
type Cluster struct {
	Key                 string              `json:"key"`
	AgeBracket          string              `json:"age_bracket"`
	Gender              string              `json:"gender"`
	IncomeBracket       string              `json:"income_bracket"`
	Size                int                 `json:"size"`
	MeanAge             float64             `json:"mean_age"`
	ModalLocation       string              `json:"modal_location"`
	MeanPurchaseIntent  float64             `json:"mean_purchase_intent"`
	MeanAcceptablePrice float64             `json:"mean_acceptable_price"`
	TopValues           []string            `json:"top_values"`
	TopConcerns         []string            `json:"top_concerns"`
	RespondentIDs       []core.RespondentID `json:"respondent_ids"`
}

// Profile converts the cluster into the narrative generator's input shape.
func (c Cluster) Profile() ports.PersonaProfile {
	return ports.PersonaProfile{
		Key:                 c.Key,
		AgeBracket:          c.AgeBracket,
		Gender:              c.Gender,
		IncomeBracket:       c.IncomeBracket,
		Size:                c.Size,
		MeanAge:             c.MeanAge,
		ModalLocation:       c.ModalLocation,
		MeanPurchaseIntent:  c.MeanPurchaseIntent,
		MeanAcceptablePrice: c.MeanAcceptablePrice,
		TopValues:           c.TopValues,
		TopConcerns:         c.TopConcerns,
	}
}

// Clusterer groups responses into demographic segments. It is pure with
// respect to its input: a fixed response set in a fixed order always yields
// the same clusters.
type Clusterer struct {
	minSize     int
	maxClusters int
}

// NewClusterer creates a clusterer with explicit thresholds.
func NewClusterer(minSize, maxClusters int) *Clusterer {
	if minSize < 1 {
		minSize = DefaultMinClusterSize
	}
	if maxClusters < 1 {
		maxClusters = DefaultMaxClusters
	}
	return &Clusterer{minSize: minSize, maxClusters: maxClusters}
}

// NewDefaultClusterer creates a clusterer with the standard thresholds.
func NewDefaultClusterer() *Clusterer {
	return NewClusterer(DefaultMinClusterSize, DefaultMaxClusters)
}

// Cluster groups responses by age-bracket x gender x income-bracket, drops
// groups under the minimum size, aggregates each survivor, and returns the
// largest clusters first (cluster key breaks size ties for determinism).
func (c *Clusterer) Cluster(responses []survey.Response) []Cluster {
	groups := make(map[string][]survey.Response)
	for _, r := range responses {
		key := clusterKey(r.Demographics)
		groups[key] = append(groups[key], r)
	}

	clusters := make([]Cluster, 0, len(groups))
	for key, members := range groups {
		if len(members) < c.minSize {
			continue
		}
		clusters = append(clusters, aggregate(key, members))
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size != clusters[j].Size {
			return clusters[i].Size > clusters[j].Size
		}
		return clusters[i].Key < clusters[j].Key
	})

	if len(clusters) > c.maxClusters {
		clusters = clusters[:c.maxClusters]
	}
	return clusters
}

func clusterKey(d survey.Demographics) string {
	return fmt.Sprintf("%s|%s|%s", d.AgeBracket, d.Gender, d.IncomeBracket)
}

// aggregate computes the cluster's characteristics from its members.
func aggregate(key string, members []survey.Response) Cluster {
	first := members[0].Demographics

	var ages, intents, prices []float64
	locations := make(map[string]int)
	values := make(map[string]int)
	concerns := make(map[string]int)
	ids := make([]core.RespondentID, 0, len(members))

	for _, m := range members {
		ids = append(ids, m.RespondentID)
		if m.Demographics.Age > 0 {
			ages = append(ages, float64(m.Demographics.Age))
		}
		if m.PurchaseIntent > 0 {
			intents = append(intents, m.PurchaseIntent)
		}
		if m.AcceptablePrice > 0 {
			prices = append(prices, m.AcceptablePrice)
		}
		if m.Demographics.LocationType != "" {
			locations[m.Demographics.LocationType]++
		}
		for _, v := range m.Psychographics.Values {
			values[v]++
		}
		for _, v := range m.Psychographics.Concerns {
			concerns[v]++
		}
	}

	return Cluster{
		Key:                 key,
		AgeBracket:          first.AgeBracket,
		Gender:              first.Gender,
		IncomeBracket:       first.IncomeBracket,
		Size:                len(members),
		MeanAge:             meanOrZero(ages),
		ModalLocation:       modal(locations),
		MeanPurchaseIntent:  meanOrZero(intents),
		MeanAcceptablePrice: meanOrZero(prices),
		TopValues:           topTags(values, topTagCount),
		TopConcerns:         topTags(concerns, topTagCount),
		RespondentIDs:       ids,
	}
}

func meanOrZero(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return mean
}

// modal returns the most frequent key; alphabetical order breaks frequency
// ties so repeated runs agree.
func modal(counts map[string]int) string {
	best := ""
	bestCount := 0
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best = value
			bestCount = count
		}
	}
	return best
}

// topTags returns the n highest-frequency tags, most frequent first, with
// alphabetical tie-breaking.
func topTags(counts map[string]int, n int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}
