package engine

import (
	"context"
	"errors"
	"time"

	"propguard/internal/analysis"
	"propguard/internal/analysis/indicator"
	"propguard/internal/logger"
	"propguard/internal/market"
	"propguard/internal/metrics"
)

// 中文说明：
// 数据循环：每轮对每个品种拉两个周期的 K 线 + 实时报价，
// 跑指标/结构/聚合，覆盖写快照表并向订阅者推增量。
// 单品种失败只跳过该品种，本轮其余品种照常；循环本身永不退出。

const fetchTimeout = 8 * time.Second

// DataCycle 跑一轮数据轮询。交给 scheduler.Every 周期调度。
func (e *Engine) DataCycle(ctx context.Context) {
	defer metrics.PollCycles.Inc()

	cctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	if err := e.gw.Connect(cctx); err != nil {
		e.setConnected(false)
		logger.Warnf("数据循环: 券商不可达，本轮跳过: %v", err)
		// 断线也要推状态帧，订阅端靠 connected=false 区分"断线"和"卡死"
		if e.bc != nil {
			symbols := e.Symbols()
			e.bc.BroadcastStatus(Status{SymbolsTracked: len(symbols), TrackedList: symbols})
		}
		return
	}

	for _, symbol := range e.Symbols() {
		if err := e.refreshSymbol(ctx, symbol); err != nil {
			metrics.SymbolErrors.WithLabelValues(symbol).Inc()
			logger.Warnf("数据循环: %s 更新失败: %v", symbol, err)
		}
	}

	// 每轮一次：账户状态 + 持仓/挂单
	sctx, cancel2 := context.WithTimeout(ctx, fetchTimeout)
	defer cancel2()
	status := e.AccountStatus(sctx)
	e.setConnected(status.Connected)
	if e.bc != nil {
		e.bc.BroadcastStatus(status)
		if book, err := e.gw.ListOpenPositionsAndOrders(sctx); err == nil {
			e.bc.BroadcastPositions(book)
		} else {
			logger.Debugf("数据循环: 持仓拉取失败: %v", err)
		}
	}
}

// refreshSymbol 单品种：两个周期的 K 线 + 报价 → 快照。
func (e *Engine) refreshSymbol(ctx context.Context, symbol string) error {
	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	ltfBars, err := e.gw.FetchBars(fctx, symbol, e.ltf, e.barCount)
	if err != nil {
		return err
	}
	htfBars, err := e.gw.FetchBars(fctx, symbol, e.htf, e.barCount)
	if err != nil {
		return err
	}

	ltfSeries, err := indicator.Annotate(ltfBars)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			logger.Debugf("数据循环: %s %s 历史不足 (%d 根)，跳过", symbol, e.ltf, len(ltfBars))
			return nil
		}
		return err
	}
	htfSeries, err := indicator.Annotate(htfBars)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			logger.Debugf("数据循环: %s %s 历史不足 (%d 根)，跳过", symbol, e.htf, len(htfBars))
			return nil
		}
		return err
	}

	// 报价失败不挡快照，bid/ask 留零值
	quote, err := e.gw.FetchQuote(fctx, symbol)
	if err != nil {
		logger.Debugf("数据循环: %s 报价失败: %v", symbol, err)
		quote = market.Quote{}
	}

	snap := analysis.BuildSnapshot(symbol, e.ltf, ltfSeries, e.htf, htfSeries, quote, time.Now())
	e.store.Set(snap)
	if e.bc != nil {
		e.bc.BroadcastMarketData(symbol, snap)
	}
	return nil
}
