package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/user"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/httpx"
)

const defaultTimeout = 5 * time.Second

type Config struct {
	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type userResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UserType   string `json:"user_type"`
	Department string `json:"department"`
	Location   string `json:"location"`
}

type client struct {
	httpClient httpx.Client
	config     Config
}

// NewClient reads profiles from GET {base_url}/users/{id}.
func NewClient(httpClient httpx.Client, config Config) user.Directory {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &client{httpClient: httpClient, config: config}
}

func (c *client) GetUser(ctx context.Context, actorID string) (*user.Profile, error) {
	if c.config.BaseURL == "" {
		return nil, domain.NewNotFoundError("user", actorID)
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/users/%s", c.config.BaseURL, url.PathEscape(actorID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExternalServiceError{Op: "directory.get_user", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NewNotFoundError("user", actorID)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &domain.ExternalServiceError{
			Op:  "directory.get_user",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExternalServiceError{Op: "directory.get_user", Err: err}
	}
	var out userResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &domain.ExternalServiceError{Op: "directory.get_user", Err: fmt.Errorf("malformed response: %w", err)}
	}
	if out.ID == "" {
		out.ID = actorID
	}
	return &user.Profile{
		ID:         out.ID,
		Name:       out.Name,
		UserType:   out.UserType,
		Department: out.Department,
		Location:   out.Location,
	}, nil
}
