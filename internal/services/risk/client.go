// Package risk talks to the external fraud-scoring oracle. The client
// FAILS CLOSED: any transport error, timeout or malformed response is
// converted into a maximal-risk HOLD so an oracle outage can never act
// as an implicit approval. Assess therefore never returns an error.
package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"quncipay/internal/models"
)

// SystemErrorFlag marks a synthesized fail-closed assessment.
const SystemErrorFlag = "SYSTEM_ERROR"

// DefaultTimeout bounds one oracle round trip.
const DefaultTimeout = 5 * time.Second

// Oracle scores a transaction context. Implementations must not return
// errors; unavailability is expressed as a fail-closed assessment.
type Oracle interface {
	Assess(ctx context.Context, tc Context) models.RiskAssessment
}

// Client is the HTTP oracle client. With no endpoint configured it
// scores locally with the embedded rule scorer, which keeps the demo
// self-contained.
type Client struct {
	httpClient *http.Client
	endpoint   string
	local      *RuleScorer
}

// NewClient creates an oracle client. endpoint may be empty.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		local:      NewRuleScorer(),
	}
}

// Assess scores tc, falling back to a maximal-risk HOLD on any failure.
func (c *Client) Assess(ctx context.Context, tc Context) models.RiskAssessment {
	if c.endpoint == "" {
		return c.local.Score(tc)
	}

	body, err := json.Marshal(tc)
	if err != nil {
		return failClosed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return failClosed(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failClosed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failClosed(fmt.Errorf("oracle returned status %d", resp.StatusCode))
	}

	var wire assessmentWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return failClosed(fmt.Errorf("malformed oracle response: %w", err))
	}

	assessment, err := fromWire(wire)
	if err != nil {
		return failClosed(err)
	}

	log.Debug().
		Int("score", assessment.Score).
		Str("decision", string(assessment.Decision)).
		Str("merchant", tc.Merchant).
		Msg("oracle assessment")
	return assessment
}

func fromWire(wire assessmentWire) (models.RiskAssessment, error) {
	if wire.RiskScore == nil {
		return models.RiskAssessment{}, fmt.Errorf("oracle response missing riskScore")
	}
	score := *wire.RiskScore
	if score < 0 || score > 100 {
		return models.RiskAssessment{}, fmt.Errorf("oracle risk score %d out of range", score)
	}

	decision := models.RiskDecision(wire.Decision)
	switch decision {
	case models.DecisionApprove, models.DecisionHold, models.DecisionReject:
	default:
		return models.RiskAssessment{}, fmt.Errorf("unknown oracle decision %q", wire.Decision)
	}

	return models.RiskAssessment{
		Score:    score,
		Decision: decision,
		Reason:   wire.Reason,
		Flags:    wire.Flags,
	}, nil
}

func failClosed(cause error) models.RiskAssessment {
	log.Warn().Err(cause).Msg("risk oracle unavailable, failing closed")
	return models.RiskAssessment{
		Score:    100,
		Decision: models.DecisionHold,
		Reason:   fmt.Sprintf("System Error: %v", cause),
		Flags:    []string{SystemErrorFlag},
	}
}
