package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/internal/store"
	"github.com/BaSui01/modflow/moderation"
	"github.com/BaSui01/modflow/testutil"
	"github.com/BaSui01/modflow/testutil/fixtures"
	"github.com/BaSui01/modflow/testutil/mocks"
	"github.com/BaSui01/modflow/types"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T, provider classify.Provider) (*http.ServeMux, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	s := store.New(db, zap.NewNop())
	require.NoError(t, s.AutoMigrate())

	orchestrator := moderation.NewOrchestrator(moderation.Options{
		Provider: provider,
		Store:    s,
		Logger:   zap.NewNop(),
	})
	mux := NewRouter(RouterOptions{
		Orchestrator: orchestrator,
		Health:       NewHealthHandler("test", zap.NewNop()),
		Auth:         NewAuthenticator(testSecret, zap.NewNop()),
		Logger:       zap.NewNop(),
	})
	return mux, s
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestHandleModerate_Rejection(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{TextFn: func(string) (*classify.RawOutcome, error) {
		return fixtures.ScoredOutcome(map[string]float64{"violence": 0.8}), nil
	}})

	rec := doJSON(t, mux, http.MethodPost, "/v1/moderate", map[string]any{
		"modality":     "text",
		"text":         "I will hurt you",
		"content_id":   "c-1",
		"content_kind": "chat",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool           `json:"success"`
		Data    types.Decision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, types.StatusRejected, resp.Data.Status)
	assert.True(t, resp.Data.ShouldBlock)
	assert.NotEmpty(t, resp.Data.Message)
}

func TestHandleModerate_InvalidModality(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})

	rec := doJSON(t, mux, http.MethodPost, "/v1/moderate", map[string]any{
		"modality":   "hologram",
		"content_id": "c-1",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, string(types.ErrInvalidRequest), resp.Error.Code)
}

func TestHandleModerate_UnknownFieldRejected(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})

	rec := doJSON(t, mux, http.MethodPost, "/v1/moderate", map[string]any{
		"modality":   "text",
		"content_id": "c-1",
		"surprise":   true,
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBatch(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})

	rec := doJSON(t, mux, http.MethodPost, "/v1/moderate/batch", map[string]any{
		"items": []map[string]any{
			{"modality": "text", "text": "good morning friends", "content_id": "b-1", "content_kind": "chat"},
			{"modality": "text", "text": "good evening friends", "content_id": "b-2", "content_kind": "chat"},
		},
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Decisions map[string]*types.Decision `json:"decisions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Decisions, 2)
	assert.Equal(t, types.StatusApproved, resp.Data.Decisions["b-1"].Status)
}

func TestHandleBatch_DuplicateContentID(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})

	rec := doJSON(t, mux, http.MethodPost, "/v1/moderate/batch", map[string]any{
		"items": []map[string]any{
			{"modality": "text", "text": "first message", "content_id": "dup", "content_kind": "chat"},
			{"modality": "text", "text": "second message", "content_id": "dup", "content_kind": "chat"},
		},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVideoWebhook_AlwaysAnswers200(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{SubmitFn: func(string, string) (string, error) { return "task-1", nil }})

	// 乱码负载同样 200
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/video", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 未知任务同样 200
	rec = doJSON(t, mux, http.MethodPost, "/v1/webhooks/video", map[string]any{
		"task_id": "ghost",
		"status":  "completed",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleVideoWebhook_CompletesTask(t *testing.T) {
	mux, s := newTestRouter(t, &mocks.Provider{SubmitFn: func(string, string) (string, error) { return "task-1", nil }})
	ctx := testutil.TestContext(t)

	rec := doJSON(t, mux, http.MethodPost, "/v1/moderate", map[string]any{
		"modality":     "video",
		"media_url":    "https://cdn.example.com/v.mp4",
		"content_id":   "v-1",
		"content_kind": "video_response",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/v1/webhooks/video", map[string]any{
		"task_id": "task-1",
		"status":  "completed",
		"output": []map[string]any{
			{"classes": []map[string]any{{"class": "hate", "score": 0.95}}},
		},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	task, err := s.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, string(types.TaskCompleted), task.Status)
}

func TestHandleGetTask(t *testing.T) {
	provider := &mocks.Provider{
		SubmitFn: func(string, string) (string, error) { return "task-5", nil },
		PollFn:   func(string) (*classify.RawOutcome, error) { return fixtures.CleanOutcome(), nil },
	}
	mux, _ := newTestRouter(t, provider)

	rec := doJSON(t, mux, http.MethodGet, "/v1/tasks/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/v1/moderate", map[string]any{
		"modality":     "video",
		"media_url":    "https://cdn.example.com/v.mp4",
		"content_id":   "v-5",
		"content_kind": "video_response",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/v1/tasks/task-5", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			TaskID   string          `json:"task_id"`
			Decision *types.Decision `json:"decision"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "task-5", resp.Data.TaskID)
	assert.Equal(t, types.StatusApproved, resp.Data.Decision.Status)
}

func TestConfigEndpointsRequireAdmin(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})

	rec := doJSON(t, mux, http.MethodGet, "/v1/config", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/v1/config", nil, map[string]string{
		"Authorization": "Bearer " + adminToken(t, "viewer"),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/v1/config", nil, map[string]string{
		"Authorization": "Bearer " + adminToken(t, "admin"),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleUpdateConfig(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})
	auth := map[string]string{"Authorization": "Bearer " + adminToken(t, "admin")}

	rec := doJSON(t, mux, http.MethodPut, "/v1/config", map[string]any{
		"patch": map[string]any{
			"strict_mode": true,
			"thresholds":  map[string]float64{"spam": 0.9},
		},
	}, auth)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Policy types.Policy `json:"policy"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Policy.StrictMode)
	assert.InDelta(t, 0.9, resp.Data.Policy.Thresholds[types.CategorySpam], 1e-9)

	// 非法阈值被拒绝
	rec = doJSON(t, mux, http.MethodPut, "/v1/config", map[string]any{
		"patch": map[string]any{"thresholds": map[string]float64{"spam": 1.5}},
	}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPut, "/v1/config", map[string]any{
		"patch": map[string]any{"thresholds": map[string]float64{"zeitgeist": 0.5}},
	}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})

	rec := doJSON(t, mux, http.MethodPost, "/v1/moderate", map[string]any{
		"modality":     "text",
		"text":         "hello everyone",
		"content_id":   "s-1",
		"content_kind": "chat",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/v1/stats?days=7", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data store.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Data.Total)

	rec = doJSON(t, mux, http.MethodGet, "/v1/stats?days=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/v1/stats?days=banana", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHub_DropsWhenSubscriberSlow(t *testing.T) {
	hub := NewEventHub(zap.NewNop())
	assert.Equal(t, 0, hub.Subscribers())

	ch := hub.subscribe()
	defer hub.unsubscribe(ch)
	assert.Equal(t, 1, hub.Subscribers())

	// 缓冲写满后 Publish 不得阻塞
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(moderation.Event{ContentID: "c", Status: types.StatusApproved})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHealthEndpoints(t *testing.T) {
	mux, _ := newTestRouter(t, &mocks.Provider{})

	rec := doJSON(t, mux, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReady_FailingCheck(t *testing.T) {
	health := NewHealthHandler("test", zap.NewNop())
	health.RegisterCheck(HealthCheckFunc{
		CheckName: "database",
		Fn: func(context.Context) error {
			return types.NewError(types.ErrPersistence, "connection refused")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	health.HandleReady(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "fail", status.Checks["database"].Status)
}
