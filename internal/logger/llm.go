package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

// 中文说明：
// LLM 原始请求/响应落盘：排查顾问解析失败时需要完整的提示词与模型原文。

var (
	llmMu   sync.Mutex
	llmLog  *log.Logger
	llmDump bool
)

func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

func EnableLLMDump(enabled bool) {
	llmMu.Lock()
	llmDump = enabled
	llmMu.Unlock()
}

func logLLM(kind, trace, symbol string, sections ...[2]string) {
	llmMu.Lock()
	l := llmLog
	enabled := llmDump
	llmMu.Unlock()
	if l == nil || !enabled {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM][")
	b.WriteString(kind)
	b.WriteString("]")
	if trace != "" {
		b.WriteString("[")
		b.WriteString(trace)
		b.WriteString("]")
	}
	if symbol != "" {
		b.WriteString("[")
		b.WriteString(symbol)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("--- ")
		b.WriteString(sec[0])
		b.WriteString(" ---\n")
		b.WriteString(sec[1])
		if !strings.HasSuffix(sec[1], "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

// trace 把同一次顾问调用的请求和响应串起来，排查时按 id 对齐上下文。
func LogLLMRequest(trace, symbol, systemPrompt, userPrompt string) {
	logLLM("request", trace, symbol, [2]string{"SYSTEM", systemPrompt}, [2]string{"USER", userPrompt})
}

func LogLLMResponse(trace, symbol, raw string) {
	logLLM("response", trace, symbol, [2]string{"RAW", raw})
}
