package reconcile

import (
	"fmt"

	"github.com/google/uuid"
)

// Summary reports what a reconciliation run did. Warnings are data
// problems, infos are resolution events (entity had to be created),
// errors are per-unit persistence failures that did not abort the run.
type Summary struct {
	// BuildingID is the resolved target building
	BuildingID uuid.UUID `json:"building_id"`

	// BuildingCreated marks that no existing building matched
	BuildingCreated bool `json:"building_created"`

	// PeriodID is the resolved billing period
	PeriodID uuid.UUID `json:"period_id"`

	// UnitsMatched counts units resolved to existing records
	UnitsMatched int `json:"units_matched"`

	// UnitsCreated counts units created during the run
	UnitsCreated int `json:"units_created"`

	// ServicesMatched counts services resolved to existing records
	ServicesMatched int `json:"services_matched"`

	// ServicesCreated counts services created during the run
	ServicesCreated int `json:"services_created"`

	// ResultsWritten counts persisted billing results
	ResultsWritten int `json:"results_written"`

	// Warnings are non-fatal data problems
	Warnings []string `json:"warnings,omitempty"`

	// Infos are resolution-ambiguity events, distinct from warnings
	Infos []string `json:"infos,omitempty"`

	// Errors are per-unit persistence failures, with enough context to
	// retry
	Errors []string `json:"errors,omitempty"`
}

func (s *Summary) warnf(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

func (s *Summary) infof(format string, args ...interface{}) {
	s.Infos = append(s.Infos, fmt.Sprintf(format, args...))
}

func (s *Summary) errorf(format string, args ...interface{}) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}
