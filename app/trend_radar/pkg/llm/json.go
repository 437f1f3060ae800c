package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSON 去掉模型常带的 ```json 围栏
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeJSON 清理围栏后解析；失败返回 KindParse 的 CollaboratorError
func DecodeJSON(op, raw string, v any) error {
	if err := json.Unmarshal([]byte(CleanJSON(raw)), v); err != nil {
		return &CollaboratorError{Op: op, Kind: KindParse, Err: err}
	}
	return nil
}
