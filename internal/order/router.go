package order

import (
	"context"
	"fmt"

	"propguard/internal/gateway/broker"
	"propguard/internal/logger"
)

// 中文说明：
// Router 负责意图 → 规范化 → 提交的完整下单路径。
// 市价单价格为 0 时自动补当前报价；券商回 10030（成交模式不支持）
// 时按备用模式逐个重试，其余拒绝原样向调用方透出。

type Router struct {
	gw broker.Gateway
}

func NewRouter(gw broker.Gateway) *Router {
	return &Router{gw: gw}
}

// Result 下单路径对外的统一结果。
type Result struct {
	Status  string `json:"status"` // success | error
	Ticket  int64  `json:"ticket,omitempty"`
	Message string `json:"message,omitempty"`
}

// Route 规范化并提交交易意图。
// 只有 *ValidationError 与券商拒绝会作为错误返回，其余路径不抛。
func (r *Router) Route(ctx context.Context, intent Intent) (Result, error) {
	meta, err := r.gw.FetchInstrumentMeta(ctx, intent.Symbol)
	if err != nil {
		return Result{}, invalid("unknown instrument %q: %v", intent.Symbol, err)
	}
	req, err := Normalize(intent, meta)
	if err != nil {
		return Result{}, err
	}

	// 市价单补当前价
	if req.Type.IsMarket() && req.Price == 0 {
		quote, qerr := r.gw.FetchQuote(ctx, req.Symbol)
		if qerr != nil {
			return Result{}, fmt.Errorf("quote unavailable for %s: %w", req.Symbol, qerr)
		}
		if req.Type == broker.OrderBuy {
			req.Price = roundDigits(quote.Ask, meta.Digits)
		} else {
			req.Price = roundDigits(quote.Bid, meta.Digits)
		}
	}

	res, err := r.submitWithFallback(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Status: "success", Ticket: res.Ticket}, nil
}

func (r *Router) submitWithFallback(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	res, err := r.gw.SubmitOrder(ctx, req)
	if err != nil {
		return broker.OrderResult{}, err
	}
	if res.Retcode == broker.RetcodeDone || res.Retcode == 0 && res.Ticket > 0 {
		return res, nil
	}

	if res.Retcode == broker.RetcodeInvalidFilling && req.Type.IsMarket() {
		for _, fill := range FallbackFills() {
			logger.Warnf("下单 %s %s: 成交模式 %s 被拒，改用 %s 重试", req.Symbol, req.Type, req.Fill, fill)
			req.Fill = fill
			res, err = r.gw.SubmitOrder(ctx, req)
			if err != nil {
				return broker.OrderResult{}, err
			}
			if res.Retcode == broker.RetcodeDone || res.Retcode == 0 && res.Ticket > 0 {
				return res, nil
			}
			if res.Retcode != broker.RetcodeInvalidFilling {
				break
			}
		}
	}
	return broker.OrderResult{}, fmt.Errorf("order rejected: %s", broker.TranslateRetcode(res.Retcode, res.Message))
}
