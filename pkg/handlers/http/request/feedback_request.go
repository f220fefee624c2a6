package request

import "github.com/AgroMunicipal/CitizenAssistant/pkg/domain"

type FeedbackRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

func (r *FeedbackRequest) Validate() error {
	if r.Rating == nil {
		return domain.NewValidationError("rating", domain.RuleRequired, "rating is required")
	}
	return nil
}
