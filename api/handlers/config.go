package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/api"
	"github.com/BaSui01/modflow/moderation"
)

// =============================================================================
// ⚙️ 策略管理 Handler
// =============================================================================

// ConfigHandler 审核策略管理处理器
type ConfigHandler struct {
	orchestrator *moderation.Orchestrator
	logger       *zap.Logger
}

// NewConfigHandler 创建策略管理处理器
func NewConfigHandler(orchestrator *moderation.Orchestrator, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// HandleGetConfig 查询当前生效策略
// @Summary 策略查询
// @Description 返回当前生效的审核策略
// @Tags 管理
// @Produce json
// @Success 200 {object} Response "当前策略"
// @Security BearerAuth
// @Router /v1/config [get]
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, api.ConfigResponse{Policy: h.orchestrator.Policy(r.Context())})
}

// HandleUpdateConfig 应用策略补丁
// @Summary 策略更新
// @Description 部分更新审核策略;省略的字段保持不变,更新立即跨实例生效
// @Tags 管理
// @Accept json
// @Produce json
// @Param request body api.ConfigUpdateRequest true "策略补丁"
// @Success 200 {object} Response "更新后的策略"
// @Failure 400 {object} Response "无效补丁"
// @Security BearerAuth
// @Router /v1/config [put]
func (h *ConfigHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req api.ConfigUpdateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if verr := req.Validate(); verr != nil {
		WriteError(w, verr, h.logger)
		return
	}

	policy, err := h.orchestrator.UpdatePolicy(r.Context(), req.Patch)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("moderation policy updated via API",
		zap.Bool("enabled", policy.Enabled),
		zap.Bool("strict_mode", policy.StrictMode),
	)
	WriteSuccess(w, api.ConfigResponse{Policy: policy})
}
