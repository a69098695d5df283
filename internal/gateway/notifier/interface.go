package notifier

// TextNotifier 最小文本通知契约，发送失败只记日志，不影响主流程。
type TextNotifier interface {
	SendText(text string) error
}

// Nop 空实现，通知未配置时顶位。
type Nop struct{}

func (Nop) SendText(string) error { return nil }
