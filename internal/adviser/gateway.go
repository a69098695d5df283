package adviser

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"propguard/internal/gateway/provider"
	"propguard/internal/logger"
	"propguard/internal/market"
	"propguard/internal/metrics"
)

// 中文说明：
// 顾问网关：推理服务外面的有界状态机。
// 状态 {Idle, Cooling, Budgeted, Calling, Disabled}，由时间、调用数、
// 失败数驱动；Disabled 是终态，只有重启进程才能恢复。
// 调用方永远拿到一个 Verdict，网关从不向上抛错。

const dayWindow = 24 * time.Hour

// Options 网关参数，零值会被 New 填上默认。
type Options struct {
	Enabled     bool
	Cooldown    time.Duration
	DailyBudget int
	MaxFails    int
}

type Gateway struct {
	model   provider.ModelProvider
	persona *PersonaManager
	opts    Options

	mu             sync.Mutex
	enabled        bool
	callsToday     int
	dayStart       time.Time
	consecFailures int
	lastCall       map[string]time.Time
	cache          map[string]Verdict

	nowFn func() time.Time
}

func New(model provider.ModelProvider, persona *PersonaManager, opts Options) *Gateway {
	if opts.Cooldown <= 0 {
		opts.Cooldown = 120 * time.Second
	}
	if opts.DailyBudget <= 0 {
		opts.DailyBudget = 30
	}
	if opts.MaxFails <= 0 {
		opts.MaxFails = 3
	}
	enabled := opts.Enabled && model != nil
	if !enabled {
		logger.Warnf("顾问网关未启用（缺少凭证或显式关闭）")
	}
	return &Gateway{
		model:    model,
		persona:  persona,
		opts:     opts,
		enabled:  enabled,
		dayStart: time.Now(),
		lastCall: make(map[string]time.Time),
		cache:    make(map[string]Verdict),
		nowFn:    time.Now,
	}
}

// Enabled 当前是否可用（被失败计数永久关闭后为 false）。
func (g *Gateway) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// Cached 返回某品种最近一次返回给调用方的裁决。
func (g *Gateway) Cached(symbol string) (Verdict, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.cache[symbol]
	return v, ok
}

// Advise 对单个品种给出裁决。一次调用至多触发一次外部推理。
func (g *Gateway) Advise(ctx context.Context, symbol string, snap market.Snapshot) Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.nowFn()

	// Disabled：终态，直接合成
	if !g.enabled {
		metrics.AICalls.WithLabelValues("disabled").Inc()
		return synthesized(symbol, WaitData, "AI disabled", now)
	}

	// Cooling：冷却期内原样返回缓存，没缓存给占位
	if last, ok := g.lastCall[symbol]; ok && now.Sub(last) < g.opts.Cooldown {
		metrics.AICalls.WithLabelValues("cooldown").Inc()
		if cached, ok := g.cache[symbol]; ok {
			cached.Source = "cache"
			return cached
		}
		return synthesized(symbol, WaitData, "cooldown, no prior verdict", now)
	}

	// 滚动日窗口到期重置
	if now.Sub(g.dayStart) >= dayWindow {
		logger.Infof("顾问网关: 日窗口重置 (本窗口已用 %d 次)", g.callsToday)
		g.callsToday = 0
		g.dayStart = now
	}

	// Budgeted：当日配额耗尽
	if g.callsToday >= g.opts.DailyBudget {
		metrics.AICalls.WithLabelValues("quota").Inc()
		return synthesized(symbol, WaitRisk, "daily call budget exhausted", now)
	}

	// Calling。trace id 贯穿本次调用的请求/响应落盘
	trace := uuid.NewString()
	systemPrompt := g.persona.SystemPrompt()
	userPrompt := RenderUserPrompt(snap)
	logger.LogLLMRequest(trace, symbol, systemPrompt, userPrompt)

	raw, err := g.model.Call(ctx, systemPrompt, userPrompt)
	if err == nil {
		logger.LogLLMResponse(trace, symbol, raw)
	}

	var verdict Verdict
	if err == nil {
		verdict, err = ParseVerdict(symbol, raw)
	}
	if err != nil {
		return g.recordFailure(symbol, now, err)
	}

	verdict.Source = "model"
	verdict.At = now
	g.callsToday++
	g.lastCall[symbol] = now
	g.cache[symbol] = verdict
	g.consecFailures = 0
	metrics.AICalls.WithLabelValues("ok").Inc()
	return verdict
}

// recordFailure 失败升级：连续失败达到阈值后永久关闭。
// 失败不计配额、不进冷却，下一轮还能再试（直到被关闭）。
func (g *Gateway) recordFailure(symbol string, now time.Time, err error) Verdict {
	g.consecFailures++
	metrics.AICalls.WithLabelValues("error").Inc()
	logger.Errorf("顾问调用失败 (%d/%d): %v", g.consecFailures, g.opts.MaxFails, err)

	if g.consecFailures >= g.opts.MaxFails {
		g.enabled = false
		logger.Errorf("顾问连续失败 %d 次，永久关闭（重启进程恢复）", g.consecFailures)
	}

	verdict := synthesized(symbol, WaitData, "advisory call failed: "+err.Error(), now)
	// 缓存只存真实返回过的裁决；从没成功过的品种存一条显式错误裁决兜底
	if _, ok := g.cache[symbol]; !ok {
		g.cache[symbol] = verdict
	}
	return verdict
}
