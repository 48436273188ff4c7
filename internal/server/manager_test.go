package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	})

	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	return NewManager(mux, cfg, zap.NewNop())
}

func TestManager_StartAndServe(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Start())
	defer m.Shutdown(context.Background())

	assert.True(t, m.IsRunning())

	resp, err := http.Get("http://" + m.Addr() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}

func TestManager_DoubleStart(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Start())
	defer m.Shutdown(context.Background())

	err := m.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestManager_Shutdown(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Start())
	addr := m.Addr()

	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, m.IsRunning())

	// 关闭后拒绝连接
	client := http.Client{Timeout: 500 * time.Millisecond}
	_, err := client.Get("http://" + addr + "/ping")
	assert.Error(t, err)

	// 重复关闭是空操作
	assert.NoError(t, m.Shutdown(context.Background()))

	// 关闭后不可再启动
	err = m.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}
