// internal/engine/answer/answer.go

// Package answer normalizes raw answer records into canonical branch
// selections. Client submissions arrive in several incompatible encodings;
// each record is classified into exactly one Kind before any scoring logic
// sees it, and anything unrecognized degrades to KindNone instead of failing.
package answer

import (
	"encoding/json"
	"strings"
)

// Kind discriminates the recognized answer encodings.
type Kind string

const (
	KindLabel     Kind = "label"     // direct "A"/"B" branch letter
	KindText      Kind = "text"      // natural-language answer text
	KindScore     Kind = "score"     // structured numeric score field
	KindDimension Kind = "dimension" // explicit dimension + weight pair
	KindNumeric   Kind = "numeric"   // bare numeric value, last-resort
	KindNone      Kind = "none"      // unrecognized; contributes nothing
)

const (
	BranchPrimary   = "A"
	BranchSecondary = "B"
)

// Selection is the canonical output of normalization.
type Selection struct {
	Kind      Kind
	Branch    string // BranchPrimary or BranchSecondary, empty for KindDimension/KindNone
	Dimension string // set for KindDimension
	Weight    int    // set for KindDimension
}

// None is the empty selection for unrecognized records.
var None = Selection{Kind: KindNone}

// Negative phrases are matched before affirmative ones: several negatives
// ("tidak setuju", "strongly disagree") contain an affirmative substring.
var negativePhrases = []string{
	"strongly disagree", "disagree", "never", "not really", "no", "false", "rarely",
	"tidak pernah", "tidak setuju", "tidak", "jarang", "salah", "kurang",
}

var affirmativePhrases = []string{
	"strongly agree", "agree", "always", "very much", "yes", "true", "often",
	"sangat setuju", "setuju", "selalu", "sangat", "ya", "iya", "benar", "sering",
}

// Normalize maps one raw answer record to a Selection. It never fails;
// malformed records yield None.
func Normalize(raw interface{}) Selection {
	switch v := raw.(type) {
	case string:
		return fromLabel(v)
	case map[string]interface{}:
		return fromStructured(v)
	case json.RawMessage:
		return fromRawJSON(v)
	case []byte:
		return fromRawJSON(v)
	default:
		if f, ok := toFloat(raw); ok {
			return fromNumeric(f)
		}
		return None
	}
}

// fromLabel handles direct label strings: a bare branch letter, or answer
// text in either supported language.
func fromLabel(s string) Selection {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return None
	}

	switch trimmed {
	case "a":
		return Selection{Kind: KindLabel, Branch: BranchPrimary}
	case "b":
		return Selection{Kind: KindLabel, Branch: BranchSecondary}
	}

	if branch, ok := matchPhrase(trimmed); ok {
		return Selection{Kind: KindText, Branch: branch}
	}
	return None
}

// fromStructured handles record-shaped answers. Field priority: branch,
// answer text, numeric score, dimension+weight.
func fromStructured(m map[string]interface{}) Selection {
	for _, key := range []string{"branch", "option", "choice"} {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			if sel := fromLabel(s); sel.Kind != KindNone {
				sel.Kind = KindLabel
				return sel
			}
		}
	}

	for _, key := range []string{"answer", "text"} {
		if s, ok := m[key].(string); ok {
			if branch, matched := matchPhrase(strings.ToLower(strings.TrimSpace(s))); matched {
				return Selection{Kind: KindText, Branch: branch}
			}
		}
	}

	for _, key := range []string{"score", "value"} {
		if f, ok := toFloat(m[key]); ok {
			return Selection{Kind: KindScore, Branch: thresholdBranch(f)}
		}
	}

	if dim, ok := m["dimension"].(string); ok && strings.TrimSpace(dim) != "" {
		weight := 1
		if f, ok := toFloat(m["weight"]); ok && f > 0 {
			weight = int(f)
		}
		return Selection{
			Kind:      KindDimension,
			Dimension: strings.ToLower(strings.TrimSpace(dim)),
			Weight:    weight,
		}
	}

	return None
}

func fromRawJSON(b []byte) Selection {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return None
	}
	return Normalize(v)
}

// fromNumeric thresholds a bare value on the assumed 1-5 agreement scale.
func fromNumeric(f float64) Selection {
	return Selection{Kind: KindNumeric, Branch: thresholdBranch(f)}
}

func thresholdBranch(f float64) string {
	if f >= 3 {
		return BranchPrimary
	}
	return BranchSecondary
}

func matchPhrase(s string) (string, bool) {
	for _, p := range negativePhrases {
		if strings.Contains(s, p) {
			return BranchSecondary, true
		}
	}
	for _, p := range affirmativePhrases {
		if strings.Contains(s, p) {
			return BranchPrimary, true
		}
	}
	return "", false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
