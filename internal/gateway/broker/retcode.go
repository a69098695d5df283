package broker

import "fmt"

// MT5 交易服务器返回码（只列核心路径会处理的子集）。
const (
	RetcodeDone           = 10009
	RetcodeInvalidVolume  = 10014
	RetcodeInvalidPrice   = 10015
	RetcodeInvalidStops   = 10016
	RetcodeMarketClosed   = 10018
	RetcodeNoMoney        = 10019
	RetcodeInvalidFilling = 10030
)

// retcodeHints 已知返回码对应的操作员提示。
var retcodeHints = map[int]string{
	RetcodeInvalidVolume:  "volume rejected by broker, check instrument volume step/min",
	RetcodeInvalidPrice:   "price rejected, requote likely, retry with fresh quote",
	RetcodeInvalidStops:   "SL/TP too close to market, widen stops",
	RetcodeMarketClosed:   "market closed for this instrument",
	RetcodeNoMoney:        "not enough margin for requested volume",
	RetcodeInvalidFilling: "fill mode unsupported by instrument, fallback required",
}

// TranslateRetcode 把券商返回码翻译成带操作建议的消息；未知码原样透出。
func TranslateRetcode(code int, raw string) string {
	if hint, ok := retcodeHints[code]; ok {
		return fmt.Sprintf("retcode=%d: %s (%s)", code, hint, raw)
	}
	return fmt.Sprintf("retcode=%d: %s", code, raw)
}
