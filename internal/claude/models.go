package claude

import (
	"encoding/json"
	"fmt"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// MessageRequest is the body of a POST /v1/messages call
type MessageRequest struct {
	Model     string    `json:"model"`            // Claude model to use
	MaxTokens int       `json:"max_tokens"`       // Maximum tokens to generate
	System    string    `json:"system,omitempty"` // System instructions
	Messages  []Message `json:"messages"`         // Conversation, a single user turn for reviews
}

// ContentBlock represents a block of content in a response.
// Text is a pointer so that a block without a text field can be told apart
// from a block with an empty one.
type ContentBlock struct {
	Type string  `json:"type"`
	Text *string `json:"text,omitempty"`
}

// MessageResponse represents the response of the Messages API
type MessageResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason,omitempty"`
	Usage      *UsageInfo     `json:"usage,omitempty"`
}

// UnmarshalJSON decodes a 2xx body field by field. A field of the wrong
// type is left at its zero value so that only a body that is not JSON fails.
func (r *MessageResponse) UnmarshalJSON(data []byte) error {
	*r = MessageResponse{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		if json.Valid(data) {
			return nil
		}
		return err
	}

	r.ID = lenientString(fields["id"])
	r.Type = lenientString(fields["type"])
	r.Role = lenientString(fields["role"])
	r.Model = lenientString(fields["model"])
	r.StopReason = lenientString(fields["stop_reason"])

	var blocks []json.RawMessage
	if raw, ok := fields["content"]; ok && json.Unmarshal(raw, &blocks) == nil {
		r.Content = make([]ContentBlock, 0, len(blocks))
		for _, b := range blocks {
			r.Content = append(r.Content, decodeBlock(b))
		}
	}

	if raw, ok := fields["usage"]; ok {
		var usage UsageInfo
		if json.Unmarshal(raw, &usage) == nil {
			r.Usage = &usage
		}
	}

	return nil
}

// decodeBlock keeps Text nil unless the block is an object whose text field
// is a string
func decodeBlock(raw json.RawMessage) ContentBlock {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return ContentBlock{}
	}

	block := ContentBlock{Type: lenientString(fields["type"])}
	if rawText, ok := fields["text"]; ok {
		var text *string
		if json.Unmarshal(rawText, &text) == nil {
			block.Text = text
		}
	}
	return block
}

func lenientString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// FirstText returns the text of the first content block. ok is false when
// there are no blocks or the first block carries no text field.
func (r *MessageResponse) FirstText() (text string, ok bool) {
	if r == nil || len(r.Content) == 0 || r.Content[0].Text == nil {
		return "", false
	}
	return *r.Content[0].Text, true
}

// UsageInfo contains token usage information for a request
type UsageInfo struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// APIError represents an error response from the Claude API
type APIError struct {
	StatusCode   int    `json:"-"`
	Type         string `json:"type"`
	ErrorDetails struct {
		Type    string `json:"type"`    // Error type
		Message string `json:"message"` // Error message
	} `json:"error"`
}

// Error implements the error interface for APIError
func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d) %s: %s", e.StatusCode, e.ErrorDetails.Type, e.ErrorDetails.Message)
}
