package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"propguard/internal/logger"
	"propguard/internal/market"
	"propguard/internal/pkg/circuit"
)

// 中文说明：
// BridgeClient 通过 MT5 终端旁的 REST 桥接服务访问券商。
// 单实例连接一次后复用，Connect 幂等；全部请求走熔断器，
// 终端掉线时快速失败而不是把轮询循环拖死。

// BridgeConfig 桥接服务访问配置。
type BridgeConfig struct {
	BaseURL        string
	Token          string
	TimeoutSeconds int
}

type BridgeClient struct {
	baseURL *url.URL
	token   string
	httpc   *http.Client
	breaker *circuit.Breaker

	mu        sync.Mutex
	connected bool
}

func NewBridgeClient(cfg BridgeConfig) (*BridgeClient, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("broker.bridge_url 不能为空")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("解析 broker.bridge_url 失败: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BridgeClient{
		baseURL: parsed,
		token:   strings.TrimSpace(cfg.Token),
		httpc:   &http.Client{Timeout: timeout},
		breaker: circuit.NewBreaker("mt5-bridge", 5, 30*time.Second),
	}, nil
}

// SetHTTPClient 测试用。
func (c *BridgeClient) SetHTTPClient(client *http.Client) {
	c.httpc = client
}

// Connect 幂等初始化：ping 桥接服务并要求终端已登录。
func (c *BridgeClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	var resp struct {
		Connected bool   `json:"connected"`
		Terminal  string `json:"terminal,omitempty"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/ping", nil, nil, &resp); err != nil {
		return fmt.Errorf("MT5 桥接不可达: %w", err)
	}
	if !resp.Connected {
		return fmt.Errorf("MT5 终端未登录")
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	logger.Infof("MT5 桥接已连接 terminal=%s", resp.Terminal)
	return nil
}

// Connected 当前连接状态（不发请求）。
func (c *BridgeClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *BridgeClient) FetchBars(ctx context.Context, symbol string, tf market.Timeframe, count int) ([]market.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", string(tf))
	q.Set("count", fmt.Sprintf("%d", count))
	var out []market.Candle
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/rates", q, nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no rates for %s %s", symbol, tf)
	}
	return out, nil
}

func (c *BridgeClient) FetchQuote(ctx context.Context, symbol string) (market.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	var out market.Quote
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/tick", q, nil, &out); err != nil {
		return market.Quote{}, err
	}
	if out.Bid <= 0 && out.Ask <= 0 {
		return market.Quote{}, fmt.Errorf("no quote for %s", symbol)
	}
	return out, nil
}

func (c *BridgeClient) FetchAccount(ctx context.Context) (Account, error) {
	var out Account
	err := c.doRequest(ctx, http.MethodGet, "/api/v1/account", nil, nil, &out)
	return out, err
}

func (c *BridgeClient) FetchInstrumentMeta(ctx context.Context, symbol string) (InstrumentMeta, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	var out InstrumentMeta
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/symbol_info", q, nil, &out); err != nil {
		return InstrumentMeta{}, err
	}
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	return out, nil
}

func (c *BridgeClient) SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	var out OrderResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/order", nil, req, &out); err != nil {
		return OrderResult{}, err
	}
	return out, nil
}

func (c *BridgeClient) ModifyPosition(ctx context.Context, ticket int64, sl, tp float64) error {
	body := map[string]any{"ticket": ticket, "sl": sl, "tp": tp}
	return c.doRequest(ctx, http.MethodPost, "/api/v1/position/modify", nil, body, nil)
}

func (c *BridgeClient) ClosePosition(ctx context.Context, ticket int64) error {
	body := map[string]any{"ticket": ticket}
	return c.doRequest(ctx, http.MethodPost, "/api/v1/position/close", nil, body, nil)
}

func (c *BridgeClient) ListOpenPositionsAndOrders(ctx context.Context) (Book, error) {
	var out Book
	err := c.doRequest(ctx, http.MethodGet, "/api/v1/book", nil, nil, &out)
	return out, err
}

func (c *BridgeClient) doRequest(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("mt5 bridge circuit open")
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		c.markDisconnected()
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		// 业务性错误（4xx）不计入熔断，服务端/网络错误计入
		if resp.StatusCode >= 500 {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		var eresp struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eresp)
		msg := strings.TrimSpace(eresp.Detail)
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("bridge %s %s: %s", method, path, msg)
	}

	c.breaker.RecordSuccess()
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *BridgeClient) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}
