package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.Serve))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count = %d, want %d", hub.Count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	waitCount(t, hub, 2)

	hub.Broadcast(Envelope{Type: TypeStatus, Data: map[string]any{"connected": true}})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var env Envelope
		require.NoError(t, conn.ReadJSON(&env))
		assert.Equal(t, TypeStatus, env.Type)
	}
}

func TestHub_DisconnectRemovesSubscriber(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitCount(t, hub, 1)

	conn.Close()
	waitCount(t, hub, 0)
}

func TestHub_BroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	// 没有订阅者时广播不阻塞、不 panic
	hub.Broadcast(Envelope{Type: TypeMarketData, Data: "x"})
	assert.Equal(t, 0, hub.Count())
}

func TestHub_SlowSubscriberDropsFrames(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitCount(t, hub, 1)

	// 订阅者不读：写协程消费一部分，队列满后帧被丢弃，广播方不被阻塞
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendQueueSize*4; i++ {
			hub.Broadcast(Envelope{Type: TypeMarketData, Data: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
	_ = conn
}
