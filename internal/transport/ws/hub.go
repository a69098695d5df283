package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"propguard/internal/logger"
	"propguard/internal/metrics"
)

// 中文说明：
// 订阅者扇出。每个客户端一条带缓冲的发送队列 + 独立写协程，
// 慢客户端队列塞满就丢帧（连接保留，写失败才摘除），
// 绝不让一个卡死的连接拖慢轮询循环。

// 消息类型。
const (
	TypeMarketData = "MARKET_DATA"
	TypePositions  = "POSITIONS"
	TypeStatus     = "STATUS"
)

// Envelope 推送帧。
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	sendQueueSize = 32
	writeTimeout  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 核心不做鉴权（见非目标），跨域直接放行
	CheckOrigin: func(*http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Envelope
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Serve 把 HTTP 请求升级为订阅连接，阻塞到连接关闭。
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("ws 升级失败: %v", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan Envelope, sendQueueSize)}

	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSSubscribers.Set(float64(n))
	logger.Debugf("ws 订阅者接入 id=%s total=%d", c.id, n)

	go h.writePump(c)
	h.readUntilClose(c)
}

// Broadcast 向所有订阅者投递，队列满的直接丢弃本帧（静默降级）。
func (h *Hub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- env:
		default:
			// 慢订阅者，丢帧
		}
	}
}

// Count 当前订阅者数。
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) writePump(c *client) {
	defer h.drop(c)
	for env := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(env); err != nil {
			return
		}
	}
}

// readUntilClose 只为感知断连，入站消息一律丢弃。
func (h *Hub) readUntilClose(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	n := len(h.clients)
	close(c.send)
	h.mu.Unlock()
	c.conn.Close()
	metrics.WSSubscribers.Set(float64(n))
	logger.Debugf("ws 订阅者断开 id=%s total=%d", c.id, n)
}
