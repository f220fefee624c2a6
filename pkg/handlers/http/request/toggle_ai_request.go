package request

import "github.com/AgroMunicipal/CitizenAssistant/pkg/domain"

type ToggleAIRequest struct {
	Enabled *bool `json:"enabled"`
}

func (r *ToggleAIRequest) Validate() error {
	if r.Enabled == nil {
		return domain.NewValidationError("enabled", domain.RuleRequired, "enabled is required")
	}
	return nil
}
