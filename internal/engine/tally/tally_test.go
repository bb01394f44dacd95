// internal/engine/tally/tally_test.go
package tally

import (
	"testing"

	"assessment-engine/internal/engine/answer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Registry Tests
// ==========================

func TestLookup(t *testing.T) {
	tt, ok := Lookup("mbti")
	require.True(t, ok)
	assert.Equal(t, ModeBinary, tt.Mode)
	assert.Len(t, tt.Pairs, 4)

	tt, ok = Lookup("riasec")
	require.True(t, ok)
	assert.Equal(t, ModeRanked, tt.Mode)
	assert.True(t, tt.Composite)
	assert.Equal(t, 3, tt.TopN)

	_, ok = Lookup("unknown-test")
	assert.False(t, ok)
}

func TestSupportedTypes(t *testing.T) {
	types := SupportedTypes()
	assert.Len(t, types, 7)
	assert.Contains(t, types, "mbti")
	assert.Contains(t, types, "big-five")
	assert.Contains(t, types, "learning-style")
}

func TestQuota(t *testing.T) {
	mbti, _ := Lookup("mbti")
	// Each pole pair spans 10 questions; both poles share the range.
	assert.Equal(t, 10, mbti.Quota("E"))
	assert.Equal(t, 10, mbti.Quota("I"))

	riasec, _ := Lookup("riasec")
	assert.Equal(t, 3, riasec.Quota("realistic"))
	assert.Equal(t, 3, riasec.Quota("conventional"))
	assert.Equal(t, 0, riasec.Quota("unknown"))

	ls, _ := Lookup("learning-style")
	assert.Equal(t, 3, ls.Quota("visual"))
	assert.Equal(t, 3, ls.Quota("kinesthetic"))
}

// ==========================
// Accumulation Tests
// ==========================

func sel(branch string) answer.Selection {
	return answer.Selection{Kind: answer.KindLabel, Branch: branch}
}

func TestAccumulate_BinaryRangeMapping(t *testing.T) {
	mbti, _ := Lookup("mbti")

	selections := map[int]answer.Selection{
		0:  sel(answer.BranchPrimary),   // E
		5:  sel(answer.BranchPrimary),   // E
		9:  sel(answer.BranchSecondary), // I
		10: sel(answer.BranchPrimary),   // S
		25: sel(answer.BranchSecondary), // F
		39: sel(answer.BranchPrimary),   // J
	}

	tally := Accumulate(mbti, selections)

	assert.Equal(t, 2, tally.Count("E"))
	assert.Equal(t, 1, tally.Count("I"))
	assert.Equal(t, 1, tally.Count("S"))
	assert.Equal(t, 0, tally.Count("N"))
	assert.Equal(t, 0, tally.Count("T"))
	assert.Equal(t, 1, tally.Count("F"))
	assert.Equal(t, 1, tally.Count("J"))
	assert.Equal(t, 0, tally.Count("P"))
}

func TestAccumulate_AllBucketsPreZeroed(t *testing.T) {
	bigFive, _ := Lookup("big-five")
	tally := Accumulate(bigFive, nil)

	for _, b := range bigFive.Buckets {
		count, ok := tally.Counts[b]
		assert.True(t, ok, "bucket %s should be initialized", b)
		assert.Equal(t, 0, count)
	}
}

func TestAccumulate_RankedSecondaryIgnored(t *testing.T) {
	// Ranked ranges have no opposing bucket; branch B answers contribute
	// nothing rather than landing somewhere arbitrary.
	riasec, _ := Lookup("riasec")

	tally := Accumulate(riasec, map[int]answer.Selection{
		0: sel(answer.BranchPrimary),
		1: sel(answer.BranchSecondary),
		2: sel(answer.BranchPrimary),
	})

	assert.Equal(t, 2, tally.Count("realistic"))
	assert.Equal(t, 0, tally.Count("investigative"))
}

func TestAccumulate_KindNoneSkipped(t *testing.T) {
	mbti, _ := Lookup("mbti")
	tally := Accumulate(mbti, map[int]answer.Selection{
		0: answer.None,
		1: sel(answer.BranchPrimary),
	})
	assert.Equal(t, 1, tally.Count("E"))
}

func TestAccumulate_DimensionWeights(t *testing.T) {
	ls, _ := Lookup("learning-style")

	tally := Accumulate(ls, map[int]answer.Selection{
		// Index is irrelevant for dimension answers; 100 is out of range.
		100: {Kind: answer.KindDimension, Dimension: "visual", Weight: 2},
		101: {Kind: answer.KindDimension, Dimension: "auditory", Weight: 1},
		102: {Kind: answer.KindDimension, Dimension: "nonexistent", Weight: 5},
	})

	assert.Equal(t, 2, tally.Count("visual"))
	assert.Equal(t, 1, tally.Count("auditory"))
	assert.Equal(t, 0, tally.Count("kinesthetic"))
	// Unknown dimensions never create new buckets.
	_, exists := tally.Counts["nonexistent"]
	assert.False(t, exists)
}

func TestAccumulate_OutOfRangeModuloFallback(t *testing.T) {
	ls, _ := Lookup("learning-style") // 3 buckets, indices 0..8

	tally := Accumulate(ls, map[int]answer.Selection{
		// 9 % 3 = 0 -> visual, 10 % 3 = 1 -> auditory
		9:  {Kind: answer.KindNumeric, Branch: answer.BranchPrimary},
		10: {Kind: answer.KindNumeric, Branch: answer.BranchPrimary},
		// Secondary-branch numerics out of range contribute nothing.
		11: {Kind: answer.KindNumeric, Branch: answer.BranchSecondary},
	})

	assert.Equal(t, 1, tally.Count("visual"))
	assert.Equal(t, 1, tally.Count("auditory"))
	assert.Equal(t, 0, tally.Count("kinesthetic"))
}

func TestAccumulate_OutOfRangeNonNumericIgnored(t *testing.T) {
	// Labels and text out of range carry structural intent that cannot be
	// honored, so they are dropped instead of remapped.
	ls, _ := Lookup("learning-style")

	tally := Accumulate(ls, map[int]answer.Selection{
		50: sel(answer.BranchPrimary),
	})

	for _, b := range ls.Buckets {
		assert.Equal(t, 0, tally.Count(b))
	}
}

func TestAccumulate_BinaryOutOfRangeIgnored(t *testing.T) {
	// Modulo fallback is a ranked-mode behavior only.
	mbti, _ := Lookup("mbti")

	tally := Accumulate(mbti, map[int]answer.Selection{
		40: {Kind: answer.KindNumeric, Branch: answer.BranchPrimary},
	})

	for _, p := range mbti.Pairs {
		assert.Equal(t, 0, tally.Count(p.First))
		assert.Equal(t, 0, tally.Count(p.Second))
	}
}

func TestAccumulate_NegativeIndexIgnored(t *testing.T) {
	ls, _ := Lookup("learning-style")
	tally := Accumulate(ls, map[int]answer.Selection{
		-1: {Kind: answer.KindNumeric, Branch: answer.BranchPrimary},
	})
	for _, b := range ls.Buckets {
		assert.Equal(t, 0, tally.Count(b))
	}
}
