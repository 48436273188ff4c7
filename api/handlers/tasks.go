package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/api"
	"github.com/BaSui01/modflow/moderation"
	"github.com/BaSui01/modflow/types"
)

// =============================================================================
// 🎬 任务查询 Handler
// =============================================================================

// TaskHandler 异步任务查询处理器
type TaskHandler struct {
	orchestrator *moderation.Orchestrator
	logger       *zap.Logger
}

// NewTaskHandler 创建任务查询处理器
func NewTaskHandler(orchestrator *moderation.Orchestrator, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// HandleGetTask 查询视频审核任务状态
// @Summary 任务查询
// @Description 查询异步视频审核任务;未终态时顺带轮询服务商
// @Tags 审核
// @Produce json
// @Param id path string true "任务 ID"
// @Success 200 {object} Response "任务决定"
// @Failure 404 {object} Response "任务不存在"
// @Router /v1/tasks/{id} [get]
func (h *TaskHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")
	if taskID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "task id is required", h.logger)
		return
	}

	decision, err := h.orchestrator.CheckTask(r.Context(), taskID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, api.TaskResponse{TaskID: taskID, Decision: decision})
}
