package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/api"
	"github.com/BaSui01/modflow/moderation"
)

// =============================================================================
// ⚖️ 审核接口 Handler
// =============================================================================

// ModerateHandler 内容审核处理器
type ModerateHandler struct {
	orchestrator *moderation.Orchestrator
	logger       *zap.Logger
}

// NewModerateHandler 创建审核处理器
func NewModerateHandler(orchestrator *moderation.Orchestrator, logger *zap.Logger) *ModerateHandler {
	return &ModerateHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// HandleModerate 处理单条内容审核
// @Summary 内容审核
// @Description 审核单条文本、音频或视频内容
// @Tags 审核
// @Accept json
// @Produce json
// @Param request body api.ModerateRequest true "审核请求"
// @Success 200 {object} Response "审核决定"
// @Failure 400 {object} Response "无效请求"
// @Router /v1/moderate [post]
func (h *ModerateHandler) HandleModerate(w http.ResponseWriter, r *http.Request) {
	var req api.ModerateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	content, verr := req.Validate()
	if verr != nil {
		WriteError(w, verr, h.logger)
		return
	}

	decision, err := h.orchestrator.Moderate(r.Context(), content)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("moderation decision",
		zap.String("content_id", content.ContentID),
		zap.String("modality", string(content.Modality)),
		zap.String("status", string(decision.Status)),
	)
	WriteSuccess(w, decision)
}

// HandleBatch 处理批量内容审核
// @Summary 批量审核
// @Description 并发审核多条内容,按 content_id 返回各自决定
// @Tags 审核
// @Accept json
// @Produce json
// @Param request body api.BatchModerateRequest true "批量审核请求"
// @Success 200 {object} Response "各条目的审核决定"
// @Failure 400 {object} Response "无效请求"
// @Router /v1/moderate/batch [post]
func (h *ModerateHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req api.BatchModerateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	contents, verr := req.Validate()
	if verr != nil {
		WriteError(w, verr, h.logger)
		return
	}

	decisions := h.orchestrator.ModerateBatch(r.Context(), contents)
	h.logger.Info("batch moderation",
		zap.Int("items", len(contents)),
		zap.Int("decisions", len(decisions)),
	)
	WriteSuccess(w, api.BatchModerateResponse{Decisions: decisions})
}
