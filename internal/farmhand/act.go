package farmhand

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/homestead/internal/scene"
)

// Outcome of one task.
type Outcome int

const (
	Done    Outcome = iota
	Skipped         // the server no longer allows the tool there
	Limited         // rate limited; stop for this cycle
)

// Actor executes tasks via the tool endpoints.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends one task to its tool endpoint.
func (a *Actor) Act(task Task) (Outcome, error) {
	var verb string
	switch task.Tool {
	case scene.ToolHoe:
		verb = "dig"
	case scene.ToolWateringCan:
		verb = "water"
	default:
		return Skipped, fmt.Errorf("%w: %s", scene.ErrUnknownTool, task.Tool)
	}

	url := fmt.Sprintf("%s/api/v1/tile/%d/%d/%s", a.BaseURL, task.At.X, task.At.Y, verb)
	resp, err := a.HTTPClient.Post(url, "application/json", nil)
	if err != nil {
		return Skipped, fmt.Errorf("POST %s: %w", verb, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Done, nil
	case http.StatusConflict:
		return Skipped, nil
	case http.StatusTooManyRequests:
		return Limited, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return Skipped, fmt.Errorf("%s at %s failed (%d): %s", verb, task.At, resp.StatusCode, string(body))
	}
}
