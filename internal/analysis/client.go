package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Report is the provider's post-call record: the recorded transcript plus
// whatever analysis the provider ran over it. Analysis is kept raw; its shape
// depends on the assistant's analysis plan and the UI renders it as-is.
type Report struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"startedAt"`
	EndedAt    time.Time       `json:"endedAt"`
	Transcript string          `json:"transcript"`
	Summary    string          `json:"summary"`
	Analysis   json.RawMessage `json:"analysis"`
}

type Client interface {
	FetchCallReport(ctx context.Context, callID string) (*Report, error)
}

type HTTPClient struct {
	http       *http.Client
	base       string
	orgID      string
	privateKey string
	now        func() time.Time
}

func NewClient(base, orgID, privateKey string) *HTTPClient {
	return &HTTPClient{
		http:       &http.Client{Timeout: 15 * time.Second},
		base:       base,
		orgID:      orgID,
		privateKey: privateKey,
		now:        time.Now,
	}
}

// signToken mints the short-lived org-scoped JWT the provider's server API
// expects in place of the raw private key.
func (c *HTTPClient) signToken() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"orgId": c.orgID,
		"token": map[string]any{"tag": "private"},
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.privateKey))
}

func (c *HTTPClient) FetchCallReport(ctx context.Context, callID string) (*Report, error) {
	token, err := c.signToken()
	if err != nil {
		return nil, fmt.Errorf("analysis sign token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.base+"/call/"+callID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analysis FetchCallReport: %s: %s", resp.Status, string(b))
	}

	var out Report
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
