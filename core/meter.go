package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by scoring runs.
var (
	// ErrBudgetExceeded aborts a run whose instruction count passed the configured budget.
	// Lower the work with --cell-override or by leaving multi-grid mode.
	ErrBudgetExceeded = errors.New("instruction budget exceeded")

	// ErrUnknownStructure is returned when the scoring target is not owned by the host.
	ErrUnknownStructure = errors.New("unknown structure")
)

// Meter counts instructions against a budget. A zero budget is unlimited.
// A nil Meter counts nothing.
type Meter struct {
	budget int
	used   int
}

// NewMeter returns a meter with the given budget.
func NewMeter(budget int) *Meter {
	return &Meter{budget: budget}
}

// Step charges one instruction.
func (m *Meter) Step() error {
	if m == nil {
		return nil
	}
	m.used++
	if m.budget > 0 && m.used > m.budget {
		return fmt.Errorf("%w: used more than %d instructions", ErrBudgetExceeded, m.budget)
	}
	return nil
}

// Used returns the number of instructions charged so far.
func (m *Meter) Used() int {
	if m == nil {
		return 0
	}
	return m.used
}
