package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"propguard/internal/gateway/broker"
)

// 中文说明：
// 把交易意图翻译成券商能接受的请求：价格按品种精度取整、
// 手数收敛到 [min,max] 并按 step 对齐、选择成交模式。
// 浮点直接 round 会在 0.07 这类手数上出 0.07000000000000001，全部走 decimal。

// Intent 一次交易意图，API 调用临时构造，从不落地。
type Intent struct {
	Symbol string  `json:"symbol"`
	Action string  `json:"action"` // BUY/SELL/BUY_LIMIT/SELL_LIMIT/BUY_STOP/SELL_STOP
	Volume float64 `json:"volume"`
	Price  float64 `json:"price"`
	SL     float64 `json:"sl"`
	TP     float64 `json:"tp"`
}

// ValidationError 进入券商前就能判死的请求。
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, v ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, v...)}
}

var orderTypes = map[string]broker.OrderType{
	"BUY":        broker.OrderBuy,
	"SELL":       broker.OrderSell,
	"BUY_LIMIT":  broker.OrderBuyLimit,
	"SELL_LIMIT": broker.OrderSellLimit,
	"BUY_STOP":   broker.OrderBuyStop,
	"SELL_STOP":  broker.OrderSellStop,
}

// fallbackFills 市价单首选 IOC；券商回 10030 时按此序尝试。
var fallbackFills = []broker.FillMode{broker.FillFOK, broker.FillReturn}

// FallbackFills 返回市价单的备用成交模式序列。
func FallbackFills() []broker.FillMode {
	out := make([]broker.FillMode, len(fallbackFills))
	copy(out, fallbackFills)
	return out
}

// Normalize 校验并规范化交易意图。meta 必须来自同一品种。
func Normalize(intent Intent, meta broker.InstrumentMeta) (broker.OrderRequest, error) {
	action := strings.ToUpper(strings.TrimSpace(intent.Action))
	typ, ok := orderTypes[action]
	if !ok {
		return broker.OrderRequest{}, invalid("invalid order type %q", intent.Action)
	}
	if meta.Symbol == "" || !strings.EqualFold(meta.Symbol, intent.Symbol) {
		return broker.OrderRequest{}, invalid("unknown instrument %q", intent.Symbol)
	}
	if intent.Volume <= 0 {
		return broker.OrderRequest{}, invalid("volume must be positive, got %v", intent.Volume)
	}
	if !typ.IsMarket() && intent.Price <= 0 {
		return broker.OrderRequest{}, invalid("pending order requires a price")
	}

	volume, err := normalizeVolume(intent.Volume, meta)
	if err != nil {
		return broker.OrderRequest{}, err
	}

	fill := broker.FillIOC
	if !typ.IsMarket() {
		fill = broker.FillReturn
	}

	return broker.OrderRequest{
		Symbol:    meta.Symbol,
		Type:      typ,
		Volume:    volume,
		Price:     roundDigits(intent.Price, meta.Digits),
		SL:        roundDigits(intent.SL, meta.Digits),
		TP:        roundDigits(intent.TP, meta.Digits),
		Fill:      fill,
		Deviation: 20,
		Comment:   "propguard",
	}, nil
}

// roundDigits 按品种报价精度取整。
func roundDigits(v float64, digits int) float64 {
	if v == 0 {
		return 0
	}
	if digits < 0 {
		digits = 0
	}
	out, _ := decimal.NewFromFloat(v).Round(int32(digits)).Float64()
	return out
}

// normalizeVolume 手数夹进 [min,max] 后对齐到最近的 step 整数倍。
func normalizeVolume(v float64, meta broker.InstrumentMeta) (float64, error) {
	vol := decimal.NewFromFloat(v)
	if meta.VolumeMin > 0 {
		if min := decimal.NewFromFloat(meta.VolumeMin); vol.LessThan(min) {
			vol = min
		}
	}
	if meta.VolumeMax > 0 {
		if max := decimal.NewFromFloat(meta.VolumeMax); vol.GreaterThan(max) {
			vol = max
		}
	}
	if meta.VolumeStep > 0 {
		step := decimal.NewFromFloat(meta.VolumeStep)
		steps := vol.Div(step).Round(0)
		vol = steps.Mul(step)
		// 对齐可能越过上界，再夹一次
		if meta.VolumeMax > 0 {
			if max := decimal.NewFromFloat(meta.VolumeMax); vol.GreaterThan(max) {
				vol = max.Div(step).Floor().Mul(step)
			}
		}
	}
	out, _ := vol.Float64()
	if out <= 0 {
		return 0, invalid("volume %v collapses to zero after step alignment", v)
	}
	return out, nil
}
