package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
)

// GeminiProvider Google Gemini 适配
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini 创建 Gemini 客户端
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	temp := float32(cfg.Temperature)
	if temp <= 0 {
		temp = 0.3
	}
	return &GeminiProvider{client: client, model: cfg.Model, temperature: temp}, nil
}

// Model 模型名
func (p *GeminiProvider) Model() string { return p.model }

// Complete 文本补全
func (p *GeminiProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(userPrompt)},
	}}, cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// CompleteVision 图片以内联字节发送
func (p *GeminiProvider) CompleteVision(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		},
	}}, &genai.GenerateContentConfig{Temperature: genai.Ptr(p.temperature)})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
