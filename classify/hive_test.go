package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/modflow/types"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HiveProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "test-key"
	cfg.RequestsPerSecond = 0 // no limiter in tests
	return NewHiveProvider(cfg)
}

func TestHiveProvider_ClassifyText(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/task/sync", r.URL.Path)
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))

		var req hiveSyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "I will hurt you", req.TextData)

		json.NewEncoder(w).Encode(hiveTaskResponse{
			ID:     "sync-1",
			Status: "completed",
			Model:  "moderation-latest",
			Output: []hiveFrame{{Classes: []hiveClass{
				{Class: "violence", Score: 0.8},
				{Class: "profanity", Score: 0.2},
			}}},
		})
	})

	outcome, err := provider.ClassifyText(context.Background(), "I will hurt you")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, outcome.Scores["violence"], 1e-9)
	assert.InDelta(t, 0.2, outcome.Scores["profanity"], 1e-9)
	assert.Equal(t, "moderation-latest", outcome.Model)
}

func TestHiveProvider_ClassifyMedia_Transcription(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req hiveSyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://media.example/prayer.mp3", req.URL)

		json.NewEncoder(w).Encode(hiveTaskResponse{
			ID:            "sync-2",
			Status:        "completed",
			Output:        []hiveFrame{{Classes: []hiveClass{{Class: "profanity", Score: 0.1}}}},
			Transcription: "thank you for this day",
		})
	})

	outcome, err := provider.ClassifyMedia(context.Background(), "https://media.example/prayer.mp3")
	require.NoError(t, err)
	assert.Equal(t, "thank you for this day", outcome.Transcription)
}

func TestHiveProvider_SubmitVideo(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/task/async", r.URL.Path)

		var req hiveAsyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://media.example/clip.mp4", req.URL)
		assert.Equal(t, "https://modflow.example/v1/webhooks/video", req.CallbackURL)

		json.NewEncoder(w).Encode(hiveTaskResponse{TaskID: "task-abc"})
	})

	taskID, err := provider.SubmitVideo(context.Background(),
		"https://media.example/clip.mp4", "https://modflow.example/v1/webhooks/video")
	require.NoError(t, err)
	assert.Equal(t, "task-abc", taskID)
}

func TestHiveProvider_PollTask_StillProcessing(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/task/task-abc/status", r.URL.Path)
		json.NewEncoder(w).Encode(hiveTaskResponse{TaskID: "task-abc", Status: "in_progress"})
	})

	outcome, err := provider.PollTask(context.Background(), "task-abc")
	require.NoError(t, err)
	assert.Nil(t, outcome, "in-progress task must return nil outcome and nil error")
}

func TestHiveProvider_PollTask_CompletedReducesFrames(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hiveTaskResponse{
			TaskID: "task-abc",
			Status: "completed",
			Output: []hiveFrame{
				{Time: 0, Classes: []hiveClass{{Class: "hate", Score: 0.1}}},
				{Time: 5, Classes: []hiveClass{{Class: "hate", Score: 0.95}}},
				{Time: 10, Classes: []hiveClass{{Class: "hate", Score: 0.3}}},
			},
		})
	})

	outcome, err := provider.PollTask(context.Background(), "task-abc")
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.InDelta(t, 0.95, outcome.Scores["hate"], 1e-9)
}

func TestHiveProvider_PollTask_Failed(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hiveTaskResponse{TaskID: "task-abc", Status: "failed", Message: "decode error"})
	})

	_, err := provider.PollTask(context.Background(), "task-abc")
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
}

func TestHiveProvider_ErrorMapping(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := provider.ClassifyText(context.Background(), "hello world")
		require.Error(t, err)
		assert.Equal(t, types.ErrRateLimited, types.GetErrorCode(err))
		assert.True(t, types.IsRetryable(err))
	})

	t.Run("upstream 5xx", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		})
		_, err := provider.ClassifyText(context.Background(), "hello world")
		require.Error(t, err)
		assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
		assert.True(t, types.IsProviderError(err))
	})

	t.Run("timeout", func(t *testing.T) {
		provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := provider.ClassifyText(ctx, "hello world")
		require.Error(t, err)
		assert.Equal(t, types.ErrUpstreamTimeout, types.GetErrorCode(err))
		assert.True(t, types.IsProviderError(err))
	})
}

func TestHiveProvider_SubmitVideo_NoTaskID(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(hiveTaskResponse{})
	})

	_, err := provider.SubmitVideo(context.Background(), "https://media.example/clip.mp4", "")
	require.Error(t, err)
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
}
