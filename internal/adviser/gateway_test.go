package adviser

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propguard/internal/logger"
	"propguard/internal/market"
)

const waitJSON = `{"action":"WAIT","setup_quality":"LOW","wait_reasons":[{"class":"WAIT_SOFT","detail":"no alignment"}],"rationale":"chop"}`
const buyJSON = `{"action":"BUY","setup_quality":"HIGH","entry":1980.5,"sl":1975.0,"tp":1992.0,"rationale":"sweep low reclaimed"}`

// stubModel 按序返回预置应答，记录调用次数。
type stubModel struct {
	calls     int
	responses []string
	errs      []error
}

func (m *stubModel) Call(ctx context.Context, system, user string) (string, error) {
	i := m.calls
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	resp := ""
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return resp, err
}

func newTestGateway(model *stubModel, opts Options) *Gateway {
	opts.Enabled = true
	g := New(model, NewPersonaManager(""), opts)
	return g
}

func snap(symbol string) market.Snapshot {
	return market.Snapshot{Symbol: symbol, Bias: market.BiasRange}
}

func TestAdvise_DisabledSynthesizesWaitData(t *testing.T) {
	g := New(nil, NewPersonaManager(""), Options{Enabled: false})

	v := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, ActionWait, v.Action)
	assert.Equal(t, "gateway", v.Source)
	require.Len(t, v.WaitReasons, 1)
	assert.Equal(t, WaitData, v.WaitReasons[0].Class)
}

func TestAdvise_CooldownServesCache(t *testing.T) {
	model := &stubModel{responses: []string{buyJSON}}
	g := newTestGateway(model, Options{Cooldown: 120 * time.Second})

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g.nowFn = func() time.Time { return base }

	first := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, ActionBuy, first.Action)
	assert.Equal(t, "model", first.Source)

	// 冷却期内：不再调模型，返回缓存副本
	g.nowFn = func() time.Time { return base.Add(30 * time.Second) }
	second := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, ActionBuy, second.Action)
	assert.Equal(t, "cache", second.Source)

	// 冷却结束：再次调用
	model.responses = append(model.responses, waitJSON)
	g.nowFn = func() time.Time { return base.Add(121 * time.Second) }
	third := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, 2, model.calls)
	assert.Equal(t, "model", third.Source)
}

func TestAdvise_CooldownIsPerSymbol(t *testing.T) {
	model := &stubModel{responses: []string{buyJSON, waitJSON}}
	g := newTestGateway(model, Options{Cooldown: 120 * time.Second})

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g.nowFn = func() time.Time { return base }

	g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	g.Advise(context.Background(), "EURUSD", snap("EURUSD"))
	assert.Equal(t, 2, model.calls)
}

func TestAdvise_QuotaExhaustion(t *testing.T) {
	model := &stubModel{responses: []string{waitJSON, waitJSON}}
	g := newTestGateway(model, Options{Cooldown: time.Second, DailyBudget: 2})

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	now := base
	g.nowFn = func() time.Time { return now }

	g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	now = now.Add(2 * time.Second)
	g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, 2, model.calls)

	// 配额用尽：WAIT_RISK，不再触发调用
	now = now.Add(2 * time.Second)
	v := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, 2, model.calls)
	assert.Equal(t, ActionWait, v.Action)
	require.Len(t, v.WaitReasons, 1)
	assert.Equal(t, WaitRisk, v.WaitReasons[0].Class)

	// 日窗口滚动后配额恢复
	model.responses = append(model.responses, waitJSON)
	now = base.Add(25 * time.Hour)
	g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, 3, model.calls)
}

func TestAdvise_FailureEscalation(t *testing.T) {
	callErr := errors.New("upstream 500")
	model := &stubModel{errs: []error{callErr, callErr, callErr}}
	g := newTestGateway(model, Options{Cooldown: time.Second, MaxFails: 3})

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g.nowFn = func() time.Time { now = now.Add(2 * time.Second); return now }

	for i := 0; i < 3; i++ {
		v := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
		assert.Equal(t, ActionWait, v.Action)
		assert.Equal(t, WaitData, v.WaitReasons[0].Class)
	}
	assert.Equal(t, 3, model.calls)
	assert.False(t, g.Enabled())

	// 永久关闭：不再触发调用
	v := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, 3, model.calls)
	assert.Equal(t, WaitData, v.WaitReasons[0].Class)
}

func TestAdvise_FailuresDoNotConsumeQuotaOrCooldown(t *testing.T) {
	model := &stubModel{errs: []error{errors.New("timeout"), nil}, responses: []string{"", buyJSON}}
	g := newTestGateway(model, Options{Cooldown: 120 * time.Second, DailyBudget: 5, MaxFails: 3})

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g.nowFn = func() time.Time { return base }

	first := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, ActionWait, first.Action)

	// 失败不进冷却：下一轮立刻重试并成功
	second := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, 2, model.calls)
	assert.Equal(t, ActionBuy, second.Action)
	assert.Equal(t, 1, g.callsToday)
}

func TestAdvise_SuccessResetsFailureCount(t *testing.T) {
	model := &stubModel{
		errs:      []error{errors.New("bad json"), nil, errors.New("bad json"), errors.New("bad json")},
		responses: []string{"", waitJSON, "", ""},
	}
	g := newTestGateway(model, Options{Cooldown: time.Millisecond, MaxFails: 3})

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g.nowFn = func() time.Time { now = now.Add(time.Second); return now }

	for i := 0; i < 4; i++ {
		g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	}
	// 中途一次成功清零计数，两次新失败不足以关闭
	assert.True(t, g.Enabled())
}

func TestAdvise_ErrorVerdictNotCachedOverRealOne(t *testing.T) {
	model := &stubModel{errs: []error{nil, errors.New("boom")}, responses: []string{buyJSON, ""}}
	g := newTestGateway(model, Options{Cooldown: time.Millisecond, MaxFails: 5})

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	g.nowFn = func() time.Time { now = now.Add(time.Second); return now }

	g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))

	cached, ok := g.Cached("XAUUSD")
	require.True(t, ok)
	assert.Equal(t, ActionBuy, cached.Action)
}

func TestAdvise_ParseFailureCountsAsFailure(t *testing.T) {
	model := &stubModel{responses: []string{"not json at all"}}
	g := newTestGateway(model, Options{MaxFails: 3})

	v := g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))
	assert.Equal(t, ActionWait, v.Action)
	assert.Equal(t, WaitData, v.WaitReasons[0].Class)
	assert.Equal(t, 1, g.consecFailures)
}

func TestAdvise_DumpLinksRequestAndResponseByTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger.SetLLMWriter(&buf)
	logger.EnableLLMDump(true)
	t.Cleanup(func() {
		logger.SetLLMWriter(nil)
		logger.EnableLLMDump(false)
	})

	model := &stubModel{responses: []string{buyJSON}}
	g := newTestGateway(model, Options{})

	g.Advise(context.Background(), "XAUUSD", snap("XAUUSD"))

	dump := buf.String()
	re := regexp.MustCompile(`\[LLM\]\[request\]\[([0-9a-f-]{36})\]\[XAUUSD\]`)
	m := re.FindStringSubmatch(dump)
	require.Len(t, m, 2, "请求落盘缺少 trace id")
	assert.Contains(t, dump, "[LLM][response]["+m[1]+"][XAUUSD]")
}
