package request

import (
	"errors"
	"testing"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSendMessageRequest_Validate(t *testing.T) {
	r := &SendMessageRequest{Message: "   "}
	var vErr *domain.ValidationError
	assert.True(t, errors.As(r.Validate(), &vErr))
	assert.Equal(t, domain.RuleEmpty, vErr.Rule)

	r = &SendMessageRequest{Message: "hola", SessionID: " s-1 "}
	assert.NoError(t, r.Validate())
	assert.Equal(t, "s-1", r.SessionID)
}

func TestFeedbackRequest_Validate(t *testing.T) {
	var vErr *domain.ValidationError
	assert.True(t, errors.As((&FeedbackRequest{}).Validate(), &vErr))
	assert.Equal(t, "rating", vErr.Field)

	rating := 4
	assert.NoError(t, (&FeedbackRequest{Rating: &rating}).Validate())
}

func TestToggleAIRequest_Validate(t *testing.T) {
	assert.Error(t, (&ToggleAIRequest{}).Validate())
	enabled := false
	assert.NoError(t, (&ToggleAIRequest{Enabled: &enabled}).Validate())
}
