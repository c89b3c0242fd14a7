package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"podium/agent/internal/config"
)

type CheckResult struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency_ms"`
	Error   string        `json:"error,omitempty"`
}

type HealthStatus struct {
	OK        bool          `json:"ok"`
	Checks    []CheckResult `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

func (h HealthStatus) String() string {
	status := "OK"
	if !h.OK {
		status = "FAIL"
	}
	s := fmt.Sprintf("Health: %s\n", status)
	for _, c := range h.Checks {
		mark := "✓"
		if !c.OK {
			mark = "✗"
		}
		s += fmt.Sprintf("  %s %s (%dms)", mark, c.Name, c.Latency.Milliseconds())
		if c.Error != "" {
			s += fmt.Sprintf(" - %s", c.Error)
		}
		s += "\n"
	}
	return s
}

// CheckAll runs all health checks and returns combined status
func CheckAll(ctx context.Context, cfg config.Config) HealthStatus {
	checks := []CheckResult{
		checkTransportSecret(cfg),
		checkAnalysisAPI(ctx, cfg),
	}

	allOK := true
	for _, c := range checks {
		if !c.OK {
			allOK = false
		}
	}

	return HealthStatus{
		OK:        allOK,
		Checks:    checks,
		CheckedAt: time.Now().UTC(),
	}
}

func checkTransportSecret(cfg config.Config) CheckResult {
	result := CheckResult{Name: "transport_token"}
	if cfg.Transport.TokenSecret == "" {
		result.Error = "TRANSPORT_TOKEN_SECRET not set"
		return result
	}
	if len(cfg.Transport.TokenSecret) < 16 {
		result.Error = "TRANSPORT_TOKEN_SECRET too short (want >= 16 bytes)"
		return result
	}
	result.OK = true
	return result
}

func checkAnalysisAPI(ctx context.Context, cfg config.Config) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "analysis_api"}

	if cfg.Analysis.PrivateKey == "" || cfg.Analysis.OrgID == "" {
		result.Error = "ANALYSIS_PRIVATE_KEY or ANALYSIS_ORG_ID not set"
		result.Latency = time.Since(start)
		return result
	}

	// Listing one call is the lightest authenticated request the provider
	// offers.
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"orgId": cfg.Analysis.OrgID,
		"token": map[string]any{"tag": "private"},
		"iat":   now.Unix(),
		"exp":   now.Add(5 * time.Minute).Unix(),
	}).SignedString([]byte(cfg.Analysis.PrivateKey))
	if err != nil {
		result.Error = fmt.Sprintf("token sign failed: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, "GET", cfg.Analysis.BaseURL+"/call?limit=1", nil)
	if err != nil {
		result.Error = fmt.Sprintf("request build failed: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)

	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		result.Error = fmt.Sprintf("credentials rejected (%d)", resp.StatusCode)
		return result
	}
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		result.Error = fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body))
		return result
	}

	result.OK = true
	return result
}
