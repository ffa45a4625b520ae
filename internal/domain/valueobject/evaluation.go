// Package valueobject contains domain value objects for the reconciliation engine.
package valueobject

import (
	"github.com/concilia/backend/internal/domain/entity"
)

// Confidence score thresholds. A score of at least ScoreHighThreshold with an
// exact amount and date buckets as high; at or above ScoreMediumThreshold
// (or a high score without exactness) buckets as medium; anything below is low.
const (
	ScoreHighThreshold   = 95.0
	ScoreMediumThreshold = 70.0
)

// RuleScore is the contribution of one rule to a pair evaluation.
type RuleScore struct {
	RuleID   string
	RuleName string
	Type     RuleType
	// Score is the raw rule score in [0, 1].
	Score  float64
	Weight int
}

// MatchEvaluation is the rule-engine verdict for one bank-transaction /
// ledger-entry pair.
type MatchEvaluation struct {
	// Score is the weighted total scaled to [0, 100].
	Score     float64
	Breakdown []RuleScore
	// ExactAmount and ExactDate report zero amount difference and same posting
	// date, used for confidence bucketing and auto-confirmation.
	ExactAmount bool
	ExactDate   bool
}

// Exact reports whether both amount and date matched exactly.
func (e MatchEvaluation) Exact() bool {
	return e.ExactAmount && e.ExactDate
}

// Confidence buckets the evaluation into the coarse high/medium/low scale.
// High requires a top score plus an exact amount; a score that high already
// implies the date fell inside the rule window.
func (e MatchEvaluation) Confidence() entity.Confidence {
	switch {
	case e.Score >= ScoreHighThreshold && e.ExactAmount:
		return entity.ConfidenceHigh
	case e.Score >= ScoreMediumThreshold:
		return entity.ConfidenceMedium
	default:
		return entity.ConfidenceLow
	}
}

// Suggestable reports whether the evaluation is strong enough to persist as a
// suggested match. Low-confidence pairs are surfaced in listings only.
func (e MatchEvaluation) Suggestable() bool {
	return e.Score >= ScoreMediumThreshold
}
