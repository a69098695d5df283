package notifier

import (
	"strings"
	"time"

	"propguard/internal/pkg/text"
)

const maxMessageLen = 3800

// Message 统一格式的推送正文：标题 + 键值行 + 尾注。
type Message struct {
	Icon      string
	Title     string
	Lines     []string
	Footer    string
	Timestamp time.Time
}

// RenderMarkdown 生成 Markdown 文本，超长自动裁剪（Telegram 上限 4096）。
func (m Message) RenderMarkdown() string {
	var b strings.Builder
	if header := strings.TrimSpace(m.Icon + " " + m.Title); header != "" {
		b.WriteString("*" + header + "*\n")
	}
	lines := make([]string, 0, len(m.Lines))
	for _, line := range m.Lines {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) > 0 {
		b.WriteString("```\n")
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		b.WriteString(footer + "\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString("时间: " + m.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	return text.Truncate(strings.TrimSpace(b.String()), maxMessageLen)
}
