// internal/engine/tally/registry.go
package tally

// Mode selects how a test type's counters are classified.
type Mode string

const (
	ModeBinary Mode = "binary" // dominant pole per fixed pole pair
	ModeRanked Mode = "ranked" // buckets sorted by descending count
)

// PolePair is one binary dimension of a type-indicator test. Branch A
// increments First, branch B increments Second. Ties resolve to Default;
// the registry always declares it explicitly rather than letting comparison
// order decide.
type PolePair struct {
	First   string
	Second  string
	Default string
}

// Range maps a contiguous, inclusive span of question indices to its
// scoring target. For binary tests Second names the opposing pole; for
// ranked tests Second is empty and only affirmative branches count.
type Range struct {
	Start  int
	End    int
	First  string
	Second string
}

// TestType is the static scoring definition for one questionnaire
// instrument. Adding a test type means adding an entry here; the tally and
// classifier control flow never changes.
type TestType struct {
	ID        string
	Mode      Mode
	Pairs     []PolePair // binary mode, in primary-code order
	Buckets   []string   // ranked mode, registry order breaks count ties
	Ranges    []Range
	TopN      int  // size of the top subset reported for ranked tests
	Composite bool // primary code from top-N first letters (interest codes)
}

// Quota returns the number of questions feeding the named bucket.
func (t *TestType) Quota(bucket string) int {
	total := 0
	for _, r := range t.Ranges {
		if r.First == bucket || r.Second == bucket {
			total += r.End - r.Start + 1
		}
	}
	return total
}

// rangeFor returns the range containing idx, if any.
func (t *TestType) rangeFor(idx int) (Range, bool) {
	for _, r := range t.Ranges {
		if idx >= r.Start && idx <= r.End {
			return r, true
		}
	}
	return Range{}, false
}

func rankedRanges(buckets []string, perBucket int) []Range {
	ranges := make([]Range, 0, len(buckets))
	for i, b := range buckets {
		ranges = append(ranges, Range{
			Start: i * perBucket,
			End:   i*perBucket + perBucket - 1,
			First: b,
		})
	}
	return ranges
}

var registry = map[string]*TestType{
	"mbti": {
		ID:   "mbti",
		Mode: ModeBinary,
		Pairs: []PolePair{
			{First: "E", Second: "I", Default: "E"},
			{First: "S", Second: "N", Default: "S"},
			{First: "T", Second: "F", Default: "T"},
			{First: "J", Second: "P", Default: "J"},
		},
		Ranges: []Range{
			{Start: 0, End: 9, First: "E", Second: "I"},
			{Start: 10, End: 19, First: "S", Second: "N"},
			{Start: 20, End: 29, First: "T", Second: "F"},
			{Start: 30, End: 39, First: "J", Second: "P"},
		},
	},
	"big-five": {
		ID:   "big-five",
		Mode: ModeRanked,
		Buckets: []string{
			"openness", "conscientiousness", "extraversion", "agreeableness", "neuroticism",
		},
		Ranges: rankedRanges([]string{
			"openness", "conscientiousness", "extraversion", "agreeableness", "neuroticism",
		}, 5),
		TopN: 1,
	},
	"riasec": {
		ID:   "riasec",
		Mode: ModeRanked,
		Buckets: []string{
			"realistic", "investigative", "artistic", "social", "enterprising", "conventional",
		},
		Ranges: rankedRanges([]string{
			"realistic", "investigative", "artistic", "social", "enterprising", "conventional",
		}, 3),
		TopN:      3,
		Composite: true,
	},
	"learning-style": {
		ID:      "learning-style",
		Mode:    ModeRanked,
		Buckets: []string{"visual", "auditory", "kinesthetic"},
		Ranges: []Range{
			{Start: 0, End: 2, First: "visual"},
			{Start: 3, End: 5, First: "auditory"},
			{Start: 6, End: 8, First: "kinesthetic"},
		},
		TopN: 1,
	},
	"decision-style": {
		ID:      "decision-style",
		Mode:    ModeRanked,
		Buckets: []string{"directive", "analytical", "conceptual", "behavioral"},
		Ranges: rankedRanges([]string{
			"directive", "analytical", "conceptual", "behavioral",
		}, 3),
		TopN: 1,
	},
	"multi-intelligence": {
		ID:   "multi-intelligence",
		Mode: ModeRanked,
		Buckets: []string{
			"linguistic", "logical", "spatial", "musical",
			"bodily", "interpersonal", "intrapersonal", "naturalist",
		},
		Ranges: rankedRanges([]string{
			"linguistic", "logical", "spatial", "musical",
			"bodily", "interpersonal", "intrapersonal", "naturalist",
		}, 3),
		TopN: 1,
	},
	"values": {
		ID:   "values",
		Mode: ModeRanked,
		Buckets: []string{
			"achievement", "independence", "recognition",
			"relationships", "support", "working-conditions",
		},
		Ranges: rankedRanges([]string{
			"achievement", "independence", "recognition",
			"relationships", "support", "working-conditions",
		}, 3),
		TopN: 3,
	},
}

// Lookup returns the scoring definition for a test type identifier.
func Lookup(id string) (*TestType, bool) {
	tt, ok := registry[id]
	return tt, ok
}

// SupportedTypes lists all registered test type identifiers.
func SupportedTypes() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}
