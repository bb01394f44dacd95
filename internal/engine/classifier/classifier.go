// internal/engine/classifier/classifier.go

// Package classifier turns accumulated dimension tallies into a computed
// result: a primary code, a per-dimension breakdown with percentages and
// qualitative levels, and the ranked bucket order for multi-branch tests.
package classifier

import (
	"math"
	"sort"
	"strings"

	"assessment-engine/internal/engine/tally"
)

// Qualitative level buckets, from fixed percentage thresholds.
const (
	LevelVeryHigh = "very_high" // >= 80
	LevelHigh     = "high"      // >= 60
	LevelMedium   = "medium"    // >= 40
	LevelLow      = "low"       // >= 20
	LevelVeryLow  = "very_low"
)

// DimensionScore is one entry of the per-dimension breakdown. Binary pairs
// fill CountA/CountB; ranked buckets fill Count/Quota.
type DimensionScore struct {
	Dimension  string `json:"dimension"`
	Dominant   string `json:"dominant"`
	CountA     int    `json:"countA,omitempty"`
	CountB     int    `json:"countB,omitempty"`
	Count      int    `json:"count,omitempty"`
	Quota      int    `json:"quota,omitempty"`
	Percentage int    `json:"percentage"`
	Level      string `json:"level"`
}

// ComputedResult is the classifier output. It is transient; the store
// serializes it into the persisted row.
type ComputedResult struct {
	TestType    string           `json:"testType"`
	PrimaryCode string           `json:"primaryCode"`
	Dimensions  []DimensionScore `json:"dimensions"`
	TopBuckets  []string         `json:"topBuckets,omitempty"`
	Fallback    bool             `json:"fallback,omitempty"`
	AnswerCount int              `json:"answerCount,omitempty"`
}

// Classify converts a tally into a ComputedResult using the test type's
// declared mode.
func Classify(t *tally.Tally) *ComputedResult {
	tt := t.TestType
	if tt.Mode == tally.ModeBinary {
		return classifyBinary(tt, t)
	}
	return classifyRanked(tt, t)
}

func classifyBinary(tt *tally.TestType, t *tally.Tally) *ComputedResult {
	result := &ComputedResult{
		TestType:   tt.ID,
		Dimensions: make([]DimensionScore, 0, len(tt.Pairs)),
	}

	var code strings.Builder
	for _, pair := range tt.Pairs {
		a := t.Count(pair.First)
		b := t.Count(pair.Second)

		dominant := pair.Default
		if a > b {
			dominant = pair.First
		} else if b > a {
			dominant = pair.Second
		}

		pct := 50
		if a+b > 0 {
			pct = roundPct(float64(max(a, b)) / float64(a+b) * 100)
		}

		code.WriteString(dominant)
		result.Dimensions = append(result.Dimensions, DimensionScore{
			Dimension:  pair.First + "/" + pair.Second,
			Dominant:   dominant,
			CountA:     a,
			CountB:     b,
			Percentage: pct,
			Level:      levelFor(pct),
		})
	}

	result.PrimaryCode = code.String()
	return result
}

func classifyRanked(tt *tally.TestType, t *tally.Tally) *ComputedResult {
	result := &ComputedResult{
		TestType:   tt.ID,
		Dimensions: make([]DimensionScore, 0, len(tt.Buckets)),
	}

	for _, bucket := range tt.Buckets {
		count := t.Count(bucket)
		quota := tt.Quota(bucket)

		// Each bucket is scored against its own question quota, so
		// percentages deliberately do not sum to 100 across buckets.
		pct := 0
		if quota > 0 {
			pct = roundPct(float64(count) / float64(quota) * 100)
		}

		result.Dimensions = append(result.Dimensions, DimensionScore{
			Dimension:  bucket,
			Dominant:   bucket,
			Count:      count,
			Quota:      quota,
			Percentage: pct,
			Level:      levelFor(pct),
		})
	}

	// Descending by count; registry order breaks ties deterministically.
	sort.SliceStable(result.Dimensions, func(i, j int) bool {
		return result.Dimensions[i].Count > result.Dimensions[j].Count
	})

	topN := tt.TopN
	if topN <= 0 {
		topN = 1
	}
	if topN > len(result.Dimensions) {
		topN = len(result.Dimensions)
	}
	result.TopBuckets = make([]string, 0, topN)
	for i := 0; i < topN; i++ {
		result.TopBuckets = append(result.TopBuckets, result.Dimensions[i].Dimension)
	}

	if len(result.Dimensions) > 0 {
		result.PrimaryCode = result.Dimensions[0].Dimension
	}
	if tt.Composite {
		result.PrimaryCode = compositeCode(result.TopBuckets)
	}

	return result
}

// compositeCode concatenates the uppercased first letter of each top bucket,
// e.g. realistic/investigative/artistic -> "RIA".
func compositeCode(buckets []string) string {
	var code strings.Builder
	for _, b := range buckets {
		if b == "" {
			continue
		}
		code.WriteString(strings.ToUpper(b[:1]))
	}
	return code.String()
}

func levelFor(pct int) string {
	switch {
	case pct >= 80:
		return LevelVeryHigh
	case pct >= 60:
		return LevelHigh
	case pct >= 40:
		return LevelMedium
	case pct >= 20:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// roundPct rounds and clamps to [0, 100]. Dimension-weight answers can push
// a bucket past its quota; the reported percentage still stays in bounds.
func roundPct(f float64) int {
	pct := int(math.Round(f))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
