package user

import (
	"context"
	"strings"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
)

// DefaultUserType applies when the directory has no profile for an actor.
const DefaultUserType = "ciudadano"

type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	UserType   string `json:"user_type"`
	Department string `json:"department,omitempty"`
	Location   string `json:"location,omitempty"`
}

// SessionContext is the snapshot stored on a new session.
func (p *Profile) SessionContext() session.Context {
	if p == nil {
		return session.Context{UserType: DefaultUserType}
	}
	userType := strings.ToLower(strings.TrimSpace(p.UserType))
	if userType == "" {
		userType = DefaultUserType
	}
	return session.Context{
		UserType:   userType,
		Department: p.Department,
		Location:   p.Location,
	}
}

// FirstName is used to personalize the welcome message.
func (p *Profile) FirstName() string {
	if p == nil {
		return ""
	}
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

//go:generate mockery --name=Directory --dir=. --output=./mocks --filename=directory_mock.go --case=underscore
type Directory interface {
	GetUser(ctx context.Context, actorID string) (*Profile, error)
}
