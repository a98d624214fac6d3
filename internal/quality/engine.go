package quality

import (
	"context"
	"fmt"
	"math"
	"time"

	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/types"
)

// Check statuses.
const (
	StatusPassed             = "PASSED"
	StatusPassedWithWarnings = "PASSED_WITH_WARNINGS"
	StatusFlagged            = "FLAGGED"
)

// Issue severities.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

// Issue is one rule finding against a batch.
type Issue struct {
	Type      string `json:"type"`
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
	Threshold string `json:"threshold,omitempty"`
	Expected  string `json:"expected,omitempty"`
	Variance  string `json:"variance,omitempty"`
	Message   string `json:"message"`
}

// Result is the verdict for one batch.
type Result struct {
	BatchID        string    `json:"batchId"`
	MilletType     string    `json:"milletType"`
	Status         string    `json:"status"`
	Approved       bool      `json:"approved"`
	QualityScore   int       `json:"qualityScore"`
	Issues         []Issue   `json:"issues"`
	Warnings       []Issue   `json:"warnings"`
	CheckedAt      time.Time `json:"checkedAt"`
	Recommendation string    `json:"recommendation"`
}

// Recorder persists check results. Persistence is best-effort: a failing
// recorder must never fail the check itself.
type Recorder interface {
	Record(ctx context.Context, result *Result) error
}

// Engine evaluates the five quality rules. Thresholds are fixed grading
// policy, not tunables.
type Engine struct {
	recorder Recorder
}

// New creates a quality engine. recorder may be nil when results are not
// persisted.
func New(recorder Recorder) *Engine {
	return &Engine{recorder: recorder}
}

// CheckBatch runs five independent rules; each contributes at most one
// finding (critical or warning, never both). Score starts at 100 and loses
// 20 per critical, 5 per warning, floored at 0.
func (e *Engine) CheckBatch(ctx context.Context, batch types.QualityBatch, now time.Time) (*Result, error) {
	if batch.BatchID == "" {
		return nil, fmt.Errorf("%w: batchId is required", types.ErrInvalidInput)
	}
	if batch.MoistureContent < 0 || batch.ImpurityLevel < 0 {
		return nil, fmt.Errorf("%w: moisture and impurity must be non-negative", types.ErrInvalidInput)
	}

	issues := []Issue{}
	warnings := []Issue{}

	// Rule 1: moisture content
	if batch.MoistureContent > 14 {
		issues = append(issues, Issue{
			Type:      SeverityCritical,
			Parameter: "Moisture Content",
			Value:     fmt.Sprintf("%g%%", batch.MoistureContent),
			Threshold: "14%",
			Message:   "Moisture content exceeds safe storage limit - Risk of fungal growth",
		})
	} else if batch.MoistureContent > 12 {
		warnings = append(warnings, Issue{
			Type:      SeverityWarning,
			Parameter: "Moisture Content",
			Value:     fmt.Sprintf("%g%%", batch.MoistureContent),
			Message:   "Moisture content is slightly high - Monitor closely",
		})
	}

	// Rule 2: impurity level
	if batch.ImpurityLevel > 2 {
		issues = append(issues, Issue{
			Type:      SeverityCritical,
			Parameter: "Impurity Level",
			Value:     fmt.Sprintf("%g%%", batch.ImpurityLevel),
			Threshold: "2%",
			Message:   "Impurity level exceeds acceptable limit - Requires cleaning",
		})
	} else if batch.ImpurityLevel > 1 {
		warnings = append(warnings, Issue{
			Type:      SeverityWarning,
			Parameter: "Impurity Level",
			Value:     fmt.Sprintf("%g%%", batch.ImpurityLevel),
			Message:   "Impurity level is acceptable but could be improved",
		})
	}

	// Rule 3: grain size uniformity (warning only)
	if batch.GrainSize == types.GrainMixed || batch.GrainSize == types.GrainSmall {
		warnings = append(warnings, Issue{
			Type:      SeverityWarning,
			Parameter: "Grain Size",
			Value:     batch.GrainSize,
			Message:   "Non-uniform grain size - May affect market price",
		})
	}

	// Rule 4: color
	if batch.Color == types.ColorDiscolored {
		issues = append(issues, Issue{
			Type:      SeverityCritical,
			Parameter: "Color",
			Value:     batch.Color,
			Message:   "Discoloration detected - Possible quality degradation",
		})
	} else if batch.Color == types.ColorMixed {
		warnings = append(warnings, Issue{
			Type:      SeverityWarning,
			Parameter: "Color",
			Value:     batch.Color,
			Message:   "Mixed color detected - May indicate multiple varieties",
		})
	}

	// Rule 5: weight variance, only when both weights are present
	if batch.Weight > 0 && batch.ExpectedWeight > 0 {
		variancePct := math.Abs(batch.Weight-batch.ExpectedWeight) / batch.ExpectedWeight * 100
		if variancePct > 5 {
			issues = append(issues, Issue{
				Type:      SeverityCritical,
				Parameter: "Weight",
				Value:     fmt.Sprintf("%gkg", batch.Weight),
				Expected:  fmt.Sprintf("%gkg", batch.ExpectedWeight),
				Variance:  fmt.Sprintf("%.2f%%", variancePct),
				Message:   "Weight variance exceeds 5% - Possible measurement error or loss",
			})
		}
	}

	status := StatusPassed
	if len(issues) > 0 {
		status = StatusFlagged
	} else if len(warnings) > 0 {
		status = StatusPassedWithWarnings
	}
	approved := len(issues) == 0

	score := 100 - len(issues)*20 - len(warnings)*5
	if score < 0 {
		score = 0
	}

	recommendation := "Batch meets quality standards - Approved for processing/sale"
	if !approved {
		recommendation = "Batch requires attention - Address critical issues before proceeding"
	}

	result := &Result{
		BatchID:        batch.BatchID,
		MilletType:     batch.MilletType,
		Status:         status,
		Approved:       approved,
		QualityScore:   score,
		Issues:         issues,
		Warnings:       warnings,
		CheckedAt:      now,
		Recommendation: recommendation,
	}

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, result); err != nil {
			// Persisting the verdict is best-effort; the check stands.
			logger.Warn(ctx, "Failed to record quality check", "batch_id", batch.BatchID, "error", err)
		}
	}

	return result, nil
}
