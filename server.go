package main

import (
	"net/http"
	"sync"
	"sync/atomic"

	iface "CamFaceTrack/interface"
	"CamFaceTrack/tracker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// controlState mirrors the host's enable intent. HTTP handlers write
// it from their own goroutines; the tick loop copies it onto
// Controller.Enabled so the controller itself stays single-context.
type controlState struct {
	want atomic.Bool
}

// eventHub fans every drained detection result out to HTTP clients:
// a latest-result cell plus all websocket subscribers.
type eventHub struct {
	mu        sync.RWMutex
	latest    iface.DetectionResult
	hasLatest bool
	subs      map[string]chan iface.DetectionResult
}

func newEventHub() *eventHub {
	return &eventHub{subs: map[string]chan iface.DetectionResult{}}
}

func (h *eventHub) publish(result iface.DetectionResult) {
	h.mu.Lock()
	h.latest = result
	h.hasLatest = true
	for _, ch := range h.subs {
		select {
		case ch <- result:
		default:
			// subscriber is not keeping up, skip this event for it
		}
	}
	h.mu.Unlock()
}

func (h *eventHub) subscribe() (string, chan iface.DetectionResult) {
	id := uuid.NewString()
	ch := make(chan iface.DetectionResult, 16)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *eventHub) unsubscribe(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *eventHub) last() (iface.DetectionResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.hasLatest
}

func newRouter(ctrl *tracker.Controller, hub *eventHub, state *controlState) *gin.Engine {
	r := gin.Default()
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST("/api/tracker/enable", func(c *gin.Context) {
		state.want.Store(true)
		c.JSON(http.StatusOK, gin.H{"data": "tracker enabled"})
	})
	r.POST("/api/tracker/disable", func(c *gin.Context) {
		state.want.Store(false)
		c.JSON(http.StatusOK, gin.H{"data": "tracker disabled"})
	})
	r.GET("/api/tracker/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"enabled": state.want.Load(),
			"running": ctrl.Running(),
			"device":  ctrl.Config().Device,
		})
	})
	r.GET("/api/tracker/latest", func(c *gin.Context) {
		result, ok := hub.last()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no detection published yet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})
	r.GET("/ws/events", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// upgrade failed, the response is already written
			return
		}
		id, events := hub.subscribe()
		defer hub.unsubscribe(id)
		defer conn.Close()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
		for {
			select {
			case <-closed:
				return
			case result := <-events:
				if err := conn.WriteJSON(result); err != nil {
					return
				}
			}
		}
	})
	return r
}
