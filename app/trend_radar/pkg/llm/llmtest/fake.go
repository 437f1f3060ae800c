// Package llmtest 提供测试用的 llm.Client 替身
package llmtest

import (
	"context"
	"sync"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/llm"
)

// Fake 按函数响应的 llm.Client；未设置的函数返回调用失败
type Fake struct {
	CompleteFunc func(systemPrompt, userPrompt string) (string, error)
	VisionFunc   func(image []byte, mimeType, prompt string) (string, error)

	mu           sync.Mutex
	CompleteHits int
	VisionHits   int
}

// Complete 文本补全
func (f *Fake) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	f.CompleteHits++
	f.mu.Unlock()
	if f.CompleteFunc == nil {
		return "", &llm.CollaboratorError{Op: "complete", Kind: llm.KindCall, Err: llm.ErrUnavailable}
	}
	return f.CompleteFunc(systemPrompt, userPrompt)
}

// CompleteVision 图像解读
func (f *Fake) CompleteVision(_ context.Context, image []byte, mimeType, prompt string) (string, error) {
	f.mu.Lock()
	f.VisionHits++
	f.mu.Unlock()
	if f.VisionFunc == nil {
		return "", &llm.CollaboratorError{Op: "vision", Kind: llm.KindVision, Err: llm.ErrUnavailable}
	}
	return f.VisionFunc(image, mimeType, prompt)
}

// Model 模型名
func (f *Fake) Model() string { return "fake-model" }

// Failing 所有调用都失败的客户端
func Failing() *Fake { return &Fake{} }

// Replying 所有文本补全都返回固定文本
func Replying(text string) *Fake {
	return &Fake{CompleteFunc: func(string, string) (string, error) { return text, nil }}
}
