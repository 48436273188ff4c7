package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/modflow/moderation"
)

// =============================================================================
// 🗺️ 路由装配
// =============================================================================

// RouterOptions 路由装配参数
type RouterOptions struct {
	Orchestrator *moderation.Orchestrator
	Hub          *EventHub
	Health       *HealthHandler
	Auth         *Authenticator
	Logger       *zap.Logger

	// Gatherer /metrics 的指标来源；nil 时不挂载
	Gatherer prometheus.Gatherer
}

// NewRouter 装配全部 HTTP 路由
func NewRouter(opts RouterOptions) *http.ServeMux {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	moderate := NewModerateHandler(opts.Orchestrator, logger)
	webhook := NewWebhookHandler(opts.Orchestrator, logger)
	tasks := NewTaskHandler(opts.Orchestrator, logger)
	config := NewConfigHandler(opts.Orchestrator, logger)
	stats := NewStatsHandler(opts.Orchestrator, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/moderate", moderate.HandleModerate)
	mux.HandleFunc("POST /v1/moderate/batch", moderate.HandleBatch)
	mux.HandleFunc("POST /v1/webhooks/video", webhook.HandleVideoWebhook)
	mux.HandleFunc("GET /v1/tasks/{id}", tasks.HandleGetTask)
	mux.HandleFunc("GET /v1/stats", stats.HandleStats)

	if opts.Auth != nil {
		mux.HandleFunc("GET /v1/config", opts.Auth.RequireAdmin(config.HandleGetConfig))
		mux.HandleFunc("PUT /v1/config", opts.Auth.RequireAdmin(config.HandleUpdateConfig))
	} else {
		mux.HandleFunc("GET /v1/config", config.HandleGetConfig)
		mux.HandleFunc("PUT /v1/config", config.HandleUpdateConfig)
	}

	if opts.Hub != nil {
		mux.HandleFunc("GET /v1/events", opts.Hub.HandleEvents)
	}
	if opts.Health != nil {
		mux.HandleFunc("GET /health", opts.Health.HandleHealth)
		mux.HandleFunc("GET /ready", opts.Health.HandleReady)
	}
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}
