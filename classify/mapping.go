package classify

import (
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🗺️ 分类映射
// =============================================================================

// categoryMapping 服务商原生分类名 → 内部 8 类分类。
// 不在表中的原生分类不产生标记，但保留在 RawScores 中供审计。
var categoryMapping = map[string]types.Category{
	"hate":             types.CategoryHateSpeech,
	"hate_speech":      types.CategoryHateSpeech,
	"discrimination":   types.CategoryHateSpeech,
	"bullying":         types.CategoryHarassment,
	"harassment":       types.CategoryHarassment,
	"threat":           types.CategoryHarassment,
	"violence":         types.CategoryViolence,
	"gore":             types.CategoryViolence,
	"weapons":          types.CategoryViolence,
	"self_harm":        types.CategorySelfHarm,
	"self-harm":        types.CategorySelfHarm,
	"suicide":          types.CategorySelfHarm,
	"sexual":           types.CategorySexualContent,
	"nudity":           types.CategorySexualContent,
	"suggestive":       types.CategorySexualContent,
	"spam":             types.CategorySpam,
	"scam":             types.CategorySpam,
	"solicitation":     types.CategorySpam,
	"profanity":        types.CategoryProfanity,
	"vulgarity":        types.CategoryProfanity,
	"drugs":            types.CategoryIllegalActivity,
	"illegal":          types.CategoryIllegalActivity,
	"illegal_activity": types.CategoryIllegalActivity,
}

// MapClass 将服务商原生分类名映射到内部分类；未映射返回 ("", false)。
func MapClass(name string) (types.Category, bool) {
	c, ok := categoryMapping[name]
	return c, ok
}

// =============================================================================
// 🎚️ 阈值表
// =============================================================================

// DefaultThresholds 默认各分类阈值。
// 刻意不对称：self_harm 最低（漏报比误报更糟），spam 最高
// （误报会直接阻断正常使用）。
func DefaultThresholds() map[types.Category]float64 {
	return map[types.Category]float64{
		types.CategoryHateSpeech:      0.55,
		types.CategoryHarassment:      0.6,
		types.CategoryViolence:        0.6,
		types.CategorySelfHarm:        0.4,
		types.CategorySexualContent:   0.5,
		types.CategorySpam:            0.7,
		types.CategoryProfanity:       0.65,
		types.CategoryIllegalActivity: 0.5,
	}
}

// flagDescriptions 标记的内部描述（审计用，非面向用户提示语）
var flagDescriptions = map[types.Category]string{
	types.CategoryHateSpeech:      "content scored above the hate speech threshold",
	types.CategoryHarassment:      "content scored above the harassment threshold",
	types.CategoryViolence:        "content scored above the violence threshold",
	types.CategorySelfHarm:        "content scored above the self harm threshold",
	types.CategorySexualContent:   "content scored above the sexual content threshold",
	types.CategorySpam:            "content scored above the spam threshold",
	types.CategoryProfanity:       "content scored above the profanity threshold",
	types.CategoryIllegalActivity: "content scored above the illegal activity threshold",
}

// =============================================================================
// 🧮 结果构建
// =============================================================================

// ReduceFrames 将多帧/分片分数按每类最大分归并。
// 绝不取平均：单个违规帧不允许被稀释。
func ReduceFrames(frames []map[string]float64) map[string]float64 {
	merged := map[string]float64{}
	for _, frame := range frames {
		for class, score := range frame {
			if score > merged[class] {
				merged[class] = score
			}
		}
	}
	return merged
}

// BuildResult 将归一化输出按阈值表构建内部审核结果。
// 同一内部分类被多个原生分类命中时取最大分。
// thresholds 为 nil 时使用 DefaultThresholds。
func BuildResult(raw *RawOutcome, thresholds map[types.Category]float64, processingTimeMS int64) *types.Result {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}

	// 原生分数折叠到内部分类（每类取最大）
	byCategory := map[types.Category]float64{}
	for class, score := range raw.Scores {
		cat, ok := MapClass(class)
		if !ok {
			continue
		}
		if score > byCategory[cat] {
			byCategory[cat] = score
		}
	}

	var flags []types.Flag
	for _, cat := range types.AllCategories() {
		score, ok := byCategory[cat]
		if !ok {
			continue
		}
		threshold, ok := thresholds[cat]
		if !ok {
			threshold = DefaultThresholds()[cat]
		}
		if score >= threshold {
			flags = append(flags, types.Flag{
				Category:    cat,
				Severity:    types.SeverityForScore(score),
				Score:       score,
				Description: flagDescriptions[cat],
			})
		}
	}

	return types.NewResult(flags, raw.Scores, processingTimeMS, raw.Model)
}
