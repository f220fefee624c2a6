package request

import (
	"strings"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
)

type SendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Validate only checks presence; content rules belong to the sanitizer.
func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return domain.NewValidationError("message", domain.RuleEmpty, "message is required")
	}
	r.SessionID = strings.TrimSpace(r.SessionID)
	return nil
}
