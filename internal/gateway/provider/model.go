package provider

import "context"

// ModelProvider 推理服务的最小契约：提示词进、原始文本出。
// 调用可能失败或返回不可解析的文本，上层自行兜底。
type ModelProvider interface {
	Call(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
