package service

import (
	"errors"
	"fmt"

	"secondbrain/internal/proof"
)

// ErrNotFound marks lookups of ids that do not exist. Stores translate
// their driver-level not-found errors into this one.
var ErrNotFound = errors.New("not found")

// ProofRejection is the expected, user-correctable outcome of the proof
// gate. It is not a system error; callers retry with corrected input.
type ProofRejection struct {
	Failures []proof.Failure `json:"failures"`
}

func (e *ProofRejection) Error() string {
	return fmt.Sprintf("proof of completion rejected: %d field(s) failed", len(e.Failures))
}

// SubtaskRejection blocks a done transition while subtasks are open.
type SubtaskRejection struct {
	Incomplete []string `json:"incomplete_subtasks"`
	Done       int      `json:"done"`
	Total      int      `json:"total"`
}

func (e *SubtaskRejection) Error() string {
	return fmt.Sprintf("cannot complete task: %d of %d subtasks incomplete", e.Total-e.Done, e.Total)
}

// ScheduleRejection marks malformed recurring schedule fields.
type ScheduleRejection struct {
	Reason string `json:"reason"`
}

func (e *ScheduleRejection) Error() string {
	return e.Reason
}

// KeyResultRejection marks malformed key-result fields. The progress
// rollup divides by target, so a missing or non-positive target never
// reaches storage.
type KeyResultRejection struct {
	Reason string `json:"reason"`
}

func (e *KeyResultRejection) Error() string {
	return e.Reason
}
