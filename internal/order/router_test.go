package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propguard/internal/gateway/broker"
	"propguard/internal/market"
)

// fakeGateway 只实现下单路径用到的方法，其余直接零值。
type fakeGateway struct {
	meta      broker.InstrumentMeta
	metaErr   error
	quote     market.Quote
	quoteErr  error
	submitted []broker.OrderRequest
	results   []broker.OrderResult
	submitErr error
}

func (f *fakeGateway) Connect(context.Context) error { return nil }
func (f *fakeGateway) FetchBars(context.Context, string, market.Timeframe, int) ([]market.Candle, error) {
	return nil, nil
}
func (f *fakeGateway) FetchQuote(context.Context, string) (market.Quote, error) {
	return f.quote, f.quoteErr
}
func (f *fakeGateway) FetchAccount(context.Context) (broker.Account, error) {
	return broker.Account{}, nil
}
func (f *fakeGateway) FetchInstrumentMeta(context.Context, string) (broker.InstrumentMeta, error) {
	return f.meta, f.metaErr
}
func (f *fakeGateway) SubmitOrder(_ context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return broker.OrderResult{}, f.submitErr
	}
	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return res, nil
}
func (f *fakeGateway) ModifyPosition(context.Context, int64, float64, float64) error { return nil }
func (f *fakeGateway) ClosePosition(context.Context, int64) error                    { return nil }
func (f *fakeGateway) ListOpenPositionsAndOrders(context.Context) (broker.Book, error) {
	return broker.Book{}, nil
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		meta:  broker.InstrumentMeta{Symbol: "XAUUSD", Digits: 2, VolumeMin: 0.01, VolumeMax: 10, VolumeStep: 0.01},
		quote: market.Quote{Bid: 1979.84, Ask: 1980.16},
	}
}

func TestRoute_MarketBuyFillsAskPrice(t *testing.T) {
	gw := newFakeGateway()
	gw.results = []broker.OrderResult{{Ticket: 42, Retcode: broker.RetcodeDone}}

	res, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "XAUUSD", Action: "BUY", Volume: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, int64(42), res.Ticket)

	require.Len(t, gw.submitted, 1)
	assert.Equal(t, 1980.16, gw.submitted[0].Price)
	assert.Equal(t, broker.FillIOC, gw.submitted[0].Fill)
}

func TestRoute_MarketSellFillsBidPrice(t *testing.T) {
	gw := newFakeGateway()
	gw.results = []broker.OrderResult{{Ticket: 7, Retcode: broker.RetcodeDone}}

	_, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "XAUUSD", Action: "SELL", Volume: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 1979.84, gw.submitted[0].Price)
}

func TestRoute_FillModeFallback(t *testing.T) {
	gw := newFakeGateway()
	gw.results = []broker.OrderResult{
		{Retcode: broker.RetcodeInvalidFilling},
		{Retcode: broker.RetcodeInvalidFilling},
		{Ticket: 99, Retcode: broker.RetcodeDone},
	}

	res, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "XAUUSD", Action: "BUY", Volume: 0.1})
	require.NoError(t, err)
	assert.Equal(t, int64(99), res.Ticket)

	require.Len(t, gw.submitted, 3)
	assert.Equal(t, broker.FillIOC, gw.submitted[0].Fill)
	assert.Equal(t, broker.FillFOK, gw.submitted[1].Fill)
	assert.Equal(t, broker.FillReturn, gw.submitted[2].Fill)
}

func TestRoute_FallbackExhausted(t *testing.T) {
	gw := newFakeGateway()
	gw.results = []broker.OrderResult{{Retcode: broker.RetcodeInvalidFilling}}

	_, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "XAUUSD", Action: "BUY", Volume: 0.1})
	require.Error(t, err)
	assert.Len(t, gw.submitted, 3)
}

func TestRoute_RejectionSurfacesHint(t *testing.T) {
	gw := newFakeGateway()
	gw.results = []broker.OrderResult{{Retcode: broker.RetcodeInvalidStops}}

	_, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "XAUUSD", Action: "BUY", Volume: 0.1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order rejected")
	// 非 10030 不重试
	assert.Len(t, gw.submitted, 1)
}

func TestRoute_UnknownInstrument(t *testing.T) {
	gw := newFakeGateway()
	gw.metaErr = errors.New("symbol not found")

	_, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "DOGEUSD", Action: "BUY", Volume: 1})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRoute_QuoteUnavailable(t *testing.T) {
	gw := newFakeGateway()
	gw.quoteErr = errors.New("no tick")

	_, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "XAUUSD", Action: "BUY", Volume: 0.1})
	require.Error(t, err)
	assert.Empty(t, gw.submitted)
}

func TestRoute_PendingOrderKeepsGivenPrice(t *testing.T) {
	gw := newFakeGateway()
	gw.results = []broker.OrderResult{{Ticket: 3, Retcode: broker.RetcodeDone}}

	_, err := NewRouter(gw).Route(context.Background(), Intent{Symbol: "XAUUSD", Action: "SELL_LIMIT", Volume: 0.1, Price: 1999.999})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, gw.submitted[0].Price)
	assert.Equal(t, broker.FillReturn, gw.submitted[0].Fill)
}
