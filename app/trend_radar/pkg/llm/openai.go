package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
)

// OpenAIProvider 基于 eino 的 OpenAI / Azure OpenAI 适配
type OpenAIProvider struct {
	chatModel model.BaseChatModel
	model     string
}

// NewOpenAI 初始化 eino ChatModel；provider 为 azure 时走 Azure 部署
func NewOpenAI(ctx context.Context, cfg config.LLMConfig) (*OpenAIProvider, error) {
	mc := &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.TimeoutDuration(),
	}
	if cfg.Provider == "azure" {
		mc.ByAzure = true
		mc.APIVersion = cfg.APIVersion
	}
	if cfg.Temperature > 0 {
		t := float32(cfg.Temperature)
		mc.Temperature = &t
	}
	if cfg.MaxTokens > 0 {
		n := cfg.MaxTokens
		mc.MaxTokens = &n
	}

	chatModel, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &OpenAIProvider{chatModel: chatModel, model: cfg.Model}, nil
}

// Model 模型名
func (p *OpenAIProvider) Model() string { return p.model }

// Complete 文本补全
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: userPrompt},
	}
	resp, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// CompleteVision 以 data URL 形式附带图片
func (p *OpenAIProvider) CompleteVision(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	messages := []*schema.Message{{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: prompt},
			{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:    dataURL,
					Detail: schema.ImageURLDetailHigh,
				},
			},
		},
	}}
	resp, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
