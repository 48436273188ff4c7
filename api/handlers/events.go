package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/BaSui01/modflow/moderation"
)

// =============================================================================
// 📡 决定事件 WebSocket Handler
// =============================================================================

// subscriberBuffer 单个订阅者的事件缓冲；写满即丢，绝不阻塞审核路径。
const subscriberBuffer = 64

// writeTimeout 单条事件的写超时
const writeTimeout = 5 * time.Second

// EventHub 决定事件集线器，实现 moderation.EventSink。
// 管理后台通过 WebSocket 订阅实时审核决定。
type EventHub struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[chan moderation.Event]struct{}
}

// NewEventHub 创建事件集线器
func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{
		logger: logger,
		subs:   make(map[chan moderation.Event]struct{}),
	}
}

// Publish 向所有订阅者广播事件；慢订阅者丢弃事件。
func (h *EventHub) Publish(event moderation.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers 返回当前订阅者数量
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *EventHub) subscribe() chan moderation.Event {
	ch := make(chan moderation.Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) unsubscribe(ch chan moderation.Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// HandleEvents 升级到 WebSocket 并推送决定事件
// @Summary 决定事件订阅
// @Description 升级到 WebSocket,实时推送审核决定事件
// @Tags 管理
// @Success 101 "协议切换"
// @Router /v1/events [get]
func (h *EventHub) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	h.logger.Info("event subscriber connected", zap.String("remote", r.RemoteAddr))

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case event := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				h.logger.Info("event subscriber disconnected", zap.Error(err))
				return
			}
		}
	}
}
