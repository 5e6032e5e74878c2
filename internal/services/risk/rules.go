package risk

import (
	"fmt"
	"strings"
	"time"

	"quncipay/internal/models"
)

// Decision thresholds for the embedded scorer.
const (
	holdThreshold   = 60
	rejectThreshold = 90
)

// Factor deltas. Tuned so a high-value transfer at an odd hour trips a
// hold on its own.
const (
	highValueDelta    = 40
	unusualTimeDelta  = 20
	locationDelta     = 28
	counterpartyDelta = 12

	highValueMultiple = 10 // amount vs rolling average
)

type factor struct {
	flag        string
	delta       int
	description string
}

// RuleScorer is a deterministic local stand-in for the external oracle,
// used when no oracle endpoint is configured.
type RuleScorer struct{}

func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Score applies the heuristic factors and builds a templated narrative.
func (r *RuleScorer) Score(tc Context) models.RiskAssessment {
	var factors []factor

	avg := tc.UserHistory.AvgTransaction
	if avg > 0 && tc.Amount > avg*highValueMultiple {
		factors = append(factors, factor{
			flag:        "HIGH_VALUE",
			delta:       highValueDelta,
			description: fmt.Sprintf("amount is more than %dx the user's average transaction", highValueMultiple),
		})
	}

	if hour, ok := parseHour(tc.Timestamp); ok && hour < 6 {
		factors = append(factors, factor{
			flag:        "UNUSUAL_TIME",
			delta:       unusualTimeDelta,
			description: "transaction initiated at an unusual hour",
		})
	}

	if tc.Location != "" && tc.UserHistory.TypicalLocation != "" && tc.Location != tc.UserHistory.TypicalLocation {
		factors = append(factors, factor{
			flag:        "LOCATION_MISMATCH",
			delta:       locationDelta,
			description: "location differs from the user's typical location",
		})
	}

	if tc.NewCounterparty {
		factors = append(factors, factor{
			flag:        "NEW_COUNTERPARTY",
			delta:       counterpartyDelta,
			description: "first payment to this counterparty",
		})
	}

	score := 0
	flags := make([]string, 0, len(factors))
	descriptions := make([]string, 0, len(factors))
	for _, f := range factors {
		score += f.delta
		flags = append(flags, f.flag)
		descriptions = append(descriptions, f.description)
	}
	if score > 100 {
		score = 100
	}

	decision := models.DecisionApprove
	switch {
	case score >= rejectThreshold:
		decision = models.DecisionReject
	case score >= holdThreshold:
		decision = models.DecisionHold
	}

	reason := "No significant risk signals."
	if len(descriptions) > 0 {
		reason = fmt.Sprintf("Risk score %d: %s.", score, strings.Join(descriptions, "; "))
	}

	return models.RiskAssessment{
		Score:    score,
		Decision: decision,
		Reason:   reason,
		Flags:    flags,
	}
}

func parseHour(timestamp string) (int, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}
