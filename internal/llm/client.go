// Package llm connects the calendar to local and hosted chat models.
// Models turn quick add notes into event drafts and write short workload
// reviews of a date range.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation with the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is a chat model backend.
type Client interface {
	// Chat returns the model's plain-text reply. Reviews use it.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON asks for a single JSON object and decodes it into result.
	// Quick add uses it to read event drafts.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}

// ErrNoReply is returned when a backend answers without any content.
var ErrNoReply = errors.New("model returned no reply")

const maxQuotedReply = 200

// decodeReply decodes a model's JSON reply into result. Code fences and
// prose around the object are tolerated.
func decodeReply(provider, reply string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(reply)), result); err != nil {
		quoted := reply
		if len(quoted) > maxQuotedReply {
			quoted = quoted[:maxQuotedReply] + "..."
		}
		return fmt.Errorf("%s reply is not a JSON object: %w (reply: %q)", provider, err, quoted)
	}
	return nil
}
