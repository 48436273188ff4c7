package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/moderation"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 📊 统计 Handler
// =============================================================================

// maxStatsWindowDays 统计窗口上限
const maxStatsWindowDays = 90

// StatsHandler 审核统计处理器
type StatsHandler struct {
	orchestrator *moderation.Orchestrator
	logger       *zap.Logger
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(orchestrator *moderation.Orchestrator, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// HandleStats 查询审核统计
// @Summary 审核统计
// @Description 返回尾随窗口内的审核统计;days 缺省为 7
// @Tags 管理
// @Produce json
// @Param days query int false "统计窗口天数" default(7)
// @Success 200 {object} Response "统计结果"
// @Router /v1/stats [get]
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxStatsWindowDays {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "days must be an integer within [1, 90]", h.logger)
			return
		}
		days = parsed
	}

	stats, err := h.orchestrator.Stats(r.Context(), days)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, stats)
}
