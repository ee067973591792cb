// Package health derives a 0-100 project health score from current and
// historical error signals.
package health

// Deduction weights and thresholds for the score.
const (
	sessionErrorPenalty      = 20
	historicalPenalty        = 10
	historicalThreshold      = 10
	missingDescriptorPenalty = 30
)

// Tier labels for display purposes only.
const (
	TierExcellent = "excellent"
	TierGood      = "good"
	TierAttention = "attention"
)

// Report is the computed health signal. Computed on demand, never
// stored.
type Report struct {
	Score  int
	Issues []string
}

// Tier returns the display tier for the report's score.
func (r Report) Tier() string {
	return TierFor(r.Score)
}

// TierFor maps a score to its display tier.
func TierFor(score int) string {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierGood
	default:
		return TierAttention
	}
}

// Compute scores the project: 100 minus fixed deductions for session
// errors, an elevated historical error total, and a missing project
// descriptor, clamped to [0, 100].
func Compute(sessionErrors, historicalErrors int, descriptorPresent bool) Report {
	score := 100
	var issues []string

	if sessionErrors > 0 {
		score -= sessionErrorPenalty
		issues = append(issues, "session errors")
	}
	if historicalErrors > historicalThreshold {
		score -= historicalPenalty
		issues = append(issues, "elevated historical error count")
	}
	if !descriptorPresent {
		score -= missingDescriptorPenalty
		issues = append(issues, "missing project descriptor")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Report{Score: score, Issues: issues}
}
