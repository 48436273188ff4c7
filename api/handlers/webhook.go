package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/api"
	"github.com/BaSui01/modflow/moderation"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🔔 视频回调 Handler
// =============================================================================

// WebhookHandler 视频审核回调处理器
type WebhookHandler struct {
	orchestrator *moderation.Orchestrator
	logger       *zap.Logger
}

// NewWebhookHandler 创建回调处理器
func NewWebhookHandler(orchestrator *moderation.Orchestrator, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// HandleVideoWebhook 处理服务商视频审核回调
// @Summary 视频审核回调
// @Description 接收分类服务商的异步审核结果;无论处理结果如何都应答 200,
// @Description 避免服务商对无法修复的负载无谓重试
// @Tags 审核
// @Accept json
// @Produce json
// @Success 200 {object} Response "已受理"
// @Router /v1/webhooks/video [post]
func (h *WebhookHandler) HandleVideoWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.Error(err))
		WriteSuccess(w, map[string]string{"status": "received"})
		return
	}

	decision, err := h.orchestrator.ProcessWebhook(r.Context(), body)
	if err != nil {
		// 失败的回调留给轮询兜底；日志区分负载问题与内部故障
		if types.GetErrorCode(err) == types.ErrValidation || types.GetErrorCode(err) == types.ErrTaskNotFound {
			h.logger.Warn("webhook not applied", zap.Error(err))
		} else {
			h.logger.Error("webhook processing failed", zap.Error(err))
		}
		WriteSuccess(w, map[string]string{"status": "received"})
		return
	}

	WriteSuccess(w, api.TaskResponse{TaskID: decision.TaskID, Decision: decision})
}
