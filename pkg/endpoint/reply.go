package endpoint

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Reply is the decoded answer of a form endpoint: a boolean-ish success flag
// and an optional error message.
type Reply struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// UnmarshalJSON accepts the loose shapes PHP endpoints tend to emit, such as
// "success": "true" or "success": 1.
func (r *Reply) UnmarshalJSON(data []byte) error {
	var raw struct {
		Success json.RawMessage `json:"success"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Success = truthy(raw.Success)
	r.Error = messageText(raw.Error)
	return nil
}

func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "ok":
			return true
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n != 0
		}
		return false
	default:
		return false
	}
}

func messageText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return ""
}
