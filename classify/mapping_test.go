package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/modflow/types"
)

func TestReduceFrames_MaxPerClassNeverAveraged(t *testing.T) {
	frames := []map[string]float64{
		{"violence": 0.1, "spam": 0.3},
		{"violence": 0.95},
		{"violence": 0.2, "nudity": 0.4},
	}

	merged := ReduceFrames(frames)
	assert.InDelta(t, 0.95, merged["violence"], 1e-9, "single offending frame must not be diluted")
	assert.InDelta(t, 0.3, merged["spam"], 1e-9)
	assert.InDelta(t, 0.4, merged["nudity"], 1e-9)
}

func TestReduceFrames_Empty(t *testing.T) {
	assert.Empty(t, ReduceFrames(nil))
	assert.Empty(t, ReduceFrames([]map[string]float64{}))
}

func TestBuildResult_FlagIffThreshold(t *testing.T) {
	raw := &RawOutcome{
		Scores: map[string]float64{
			"violence": 0.8,  // above 0.6 -> flag, high severity
			"spam":     0.65, // below 0.7 -> no flag
			"zeitgeist": 0.99, // unmapped -> never flagged, kept in raw scores
		},
		Model: "moderation-latest",
	}

	result := BuildResult(raw, nil, 42)
	require.Len(t, result.Flags, 1)
	assert.False(t, result.Approved)
	assert.Equal(t, types.CategoryViolence, result.Flags[0].Category)
	assert.Equal(t, types.SeverityHigh, result.Flags[0].Severity)
	assert.InDelta(t, 0.8, result.Flags[0].Score, 1e-9)
	assert.Equal(t, int64(42), result.ProcessingTimeMS)

	// unmapped classes retained for audit
	assert.InDelta(t, 0.99, result.RawScores["zeitgeist"], 1e-9)
}

func TestBuildResult_SelfHarmLowThreshold(t *testing.T) {
	raw := &RawOutcome{Scores: map[string]float64{"self_harm": 0.45}, Model: "m"}
	result := BuildResult(raw, nil, 0)
	require.Len(t, result.Flags, 1)
	assert.Equal(t, types.CategorySelfHarm, result.Flags[0].Category)
	assert.Equal(t, types.SeverityLow, result.Flags[0].Severity)
}

func TestBuildResult_MultipleNativeClassesTakeMax(t *testing.T) {
	// hate and discrimination both map to hate_speech; flag carries the max
	raw := &RawOutcome{
		Scores: map[string]float64{"hate": 0.6, "discrimination": 0.92},
		Model:  "m",
	}
	result := BuildResult(raw, nil, 0)
	require.Len(t, result.Flags, 1)
	assert.Equal(t, types.CategoryHateSpeech, result.Flags[0].Category)
	assert.InDelta(t, 0.92, result.Flags[0].Score, 1e-9)
	assert.Equal(t, types.SeverityCritical, result.Flags[0].Severity)
}

func TestBuildResult_CustomThresholds(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds[types.CategoryViolence] = 0.9

	raw := &RawOutcome{Scores: map[string]float64{"violence": 0.8}, Model: "m"}
	result := BuildResult(raw, thresholds, 0)
	assert.True(t, result.Approved)
	assert.Empty(t, result.Flags)
}

func TestBuildResult_Property_ApprovedMatchesFlags(t *testing.T) {
	thresholds := DefaultThresholds()

	rapid.Check(t, func(t *rapid.T) {
		score := rapid.Float64Range(0, 1).Draw(t, "score")
		class := rapid.SampledFrom([]string{
			"hate", "bullying", "violence", "self_harm",
			"sexual", "spam", "profanity", "drugs",
		}).Draw(t, "class")

		raw := &RawOutcome{Scores: map[string]float64{class: score}, Model: "m"}
		result := BuildResult(raw, thresholds, 0)

		// invariant: approved iff no flags
		assert.Equal(t, len(result.Flags) == 0, result.Approved)

		cat, ok := MapClass(class)
		require.True(t, ok)

		// flag present iff score >= threshold for the mapped category
		if score >= thresholds[cat] {
			require.Len(t, result.Flags, 1)
			assert.Equal(t, cat, result.Flags[0].Category)
			assert.Equal(t, types.SeverityForScore(score), result.Flags[0].Severity)
		} else {
			assert.Empty(t, result.Flags)
		}
	})
}

func TestDefaultThresholds_Asymmetry(t *testing.T) {
	th := DefaultThresholds()
	assert.Len(t, th, 8, "every category needs a threshold")

	for cat, v := range th {
		if cat == types.CategorySelfHarm {
			continue
		}
		assert.Greater(t, v, th[types.CategorySelfHarm],
			"self_harm must carry the lowest threshold, %s does not exceed it", cat)
	}
	for cat, v := range th {
		if cat == types.CategorySpam {
			continue
		}
		assert.Less(t, v, th[types.CategorySpam],
			"spam must carry the highest threshold, %s is not below it", cat)
	}
}
