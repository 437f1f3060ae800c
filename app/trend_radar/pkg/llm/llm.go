package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client LLM 协作方：文本补全与图像解读。
// 所有失败都以 *CollaboratorError 返回，调用方据此选择兜底值。
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteVision(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
	Model() string
}

// ErrorKind 协作方失败类别
type ErrorKind string

const (
	KindCall      ErrorKind = "call"
	KindVision    ErrorKind = "vision"
	KindParse     ErrorKind = "parse"
	KindEmpty     ErrorKind = "empty"
	KindPanic     ErrorKind = "panic"
	KindRateLimit ErrorKind = "rate_limit"
)

// ErrUnavailable 未配置 LLM
var ErrUnavailable = errors.New("llm collaborator not configured")

// CollaboratorError 一次协作方调用的失败
type CollaboratorError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("llm %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// AsCollaboratorError 把任意错误归一为 *CollaboratorError
func AsCollaboratorError(op string, kind ErrorKind, err error) *CollaboratorError {
	if err == nil {
		return nil
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce
	}
	return &CollaboratorError{Op: op, Kind: kind, Err: err}
}
