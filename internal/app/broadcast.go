package app

import (
	"propguard/internal/engine"
	"propguard/internal/gateway/broker"
	"propguard/internal/market"
	"propguard/internal/transport/ws"
)

// hubBroadcaster 把编排器的广播调用翻译成 websocket 推送帧。
type hubBroadcaster struct {
	hub *ws.Hub
}

func (b hubBroadcaster) BroadcastMarketData(symbol string, snap market.Snapshot) {
	b.hub.Broadcast(ws.Envelope{Type: ws.TypeMarketData, Data: map[string]any{
		"symbol":   symbol,
		"snapshot": snap,
	}})
}

func (b hubBroadcaster) BroadcastStatus(status engine.Status) {
	b.hub.Broadcast(ws.Envelope{Type: ws.TypeStatus, Data: status})
}

func (b hubBroadcaster) BroadcastPositions(book broker.Book) {
	b.hub.Broadcast(ws.Envelope{Type: ws.TypePositions, Data: book})
}
