package moderation

import (
	"strings"

	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 💬 面向用户的提示语
// =============================================================================
// 拒绝提示必须是分类对应的、非技术性的、体恤的措辞，
// 绝不出现分类器的原始分类名。

// textMessages 文本拒绝提示语
var textMessages = map[types.Category]string{
	types.CategoryHateSpeech:      "Your message contains language that may hurt members of our community. Please consider rewording it with kindness.",
	types.CategoryHarassment:      "Your message may come across as hurtful to another person. Our community is built on mutual care and respect.",
	types.CategoryViolence:        "Your message contains themes of violence that we can't share here. If you are struggling, please reach out to someone you trust.",
	types.CategorySelfHarm:        "We noticed your message touches on self-harm. You are not alone — please consider talking to someone who can help, and know that this community cares about you.",
	types.CategorySexualContent:   "Your message contains content that isn't appropriate for this community space.",
	types.CategorySpam:            "Your message looks like it may be promotional or repeated content. Please share something personal instead.",
	types.CategoryProfanity:       "Your message contains language that doesn't fit the spirit of this space. A small rewording will let it through.",
	types.CategoryIllegalActivity: "Your message references activity we can't allow on the platform.",
}

// audioMessages 音频拒绝提示语
var audioMessages = map[types.Category]string{
	types.CategoryHateSpeech:      "Your recording contains language that may hurt members of our community. Please consider re-recording it with kindness.",
	types.CategoryHarassment:      "Your recording may come across as hurtful to another person. Our community is built on mutual care and respect.",
	types.CategoryViolence:        "Your recording contains themes of violence that we can't share here. If you are struggling, please reach out to someone you trust.",
	types.CategorySelfHarm:        "We noticed your recording touches on self-harm. You are not alone — please consider talking to someone who can help, and know that this community cares about you.",
	types.CategorySexualContent:   "Your recording contains content that isn't appropriate for this community space.",
	types.CategorySpam:            "Your recording looks like promotional or repeated content. Please share something personal instead.",
	types.CategoryProfanity:       "Your recording contains language that doesn't fit the spirit of this space. Please consider re-recording it.",
	types.CategoryIllegalActivity: "Your recording references activity we can't allow on the platform.",
}

// videoMessages 视频拒绝提示语
var videoMessages = map[types.Category]string{
	types.CategoryHateSpeech:      "Your video contains content that may hurt members of our community, so it won't be published.",
	types.CategoryHarassment:      "Your video may come across as hurtful to another person, so it won't be published.",
	types.CategoryViolence:        "Your video contains themes of violence that we can't share here, so it won't be published.",
	types.CategorySelfHarm:        "We noticed your video touches on self-harm, so it won't be published. You are not alone — this community cares about you.",
	types.CategorySexualContent:   "Your video contains content that isn't appropriate for this community space, so it won't be published.",
	types.CategorySpam:            "Your video looks like promotional content, so it won't be published.",
	types.CategoryProfanity:       "Your video contains language that doesn't fit the spirit of this space, so it won't be published.",
	types.CategoryIllegalActivity: "Your video references activity we can't allow on the platform, so it won't be published.",
}

// 验证与等待提示语
const (
	// pendingVideoMessage 视频提交成功后的等待提示（必须带预期时长，绝不沉默）
	pendingVideoMessage = "Your video has been received and is being reviewed. It will appear within a few minutes."

	// degradedVideoMessage 提交通道故障时的安抚提示（绝不暴露服务商原始错误）
	degradedVideoMessage = "Your video has been received and will be reviewed shortly."

	// genericRejectMessage 兜底拒绝提示
	genericRejectMessage = "This content doesn't fit our community guidelines. Please consider rephrasing it."
)

// audioFormatMessage 音频格式拒绝提示（提及支持的格式）
func audioFormatMessage() string {
	return "We couldn't read this audio format. Supported formats: " + strings.Join(supportedAudioExtensions(), ", ") + "."
}

// audioDurationMessage 音频时长拒绝提示
func audioDurationMessage() string {
	return "This recording is longer than the 10 minute limit. Please share a shorter recording."
}

// videoFormatMessage 视频格式拒绝提示
func videoFormatMessage() string {
	return "We couldn't read this video format. Supported formats: " + strings.Join(supportedVideoExtensions(), ", ") + "."
}

// videoDurationMessage 视频时长拒绝提示
func videoDurationMessage() string {
	return "This video is longer than the 3 minute limit. Please share a shorter clip."
}

// rejectionMessage 按最高分标记的分类挑选提示语
func rejectionMessage(modality types.Modality, result *types.Result) string {
	top := result.TopFlag()
	if top == nil {
		return genericRejectMessage
	}

	var table map[types.Category]string
	switch modality {
	case types.ModalityAudio:
		table = audioMessages
	case types.ModalityVideo:
		table = videoMessages
	default:
		table = textMessages
	}

	if msg, ok := table[top.Category]; ok {
		return msg
	}
	return genericRejectMessage
}
