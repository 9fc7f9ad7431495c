package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/configura/configura/pipeline"
)

// Policy decides what happens to records that fail validation.
type Policy string

const (
	// PolicyFail aborts with ErrValidationFailed if any record is rejected.
	PolicyFail Policy = "fail"
	// PolicySkip drops rejected records silently.
	PolicySkip Policy = "skip"
	// PolicyDLQ writes rejected records to a dead-letter sink.
	PolicyDLQ Policy = "dlq"
)

var (
	// ErrValidationFailed is returned under PolicyFail when records are rejected.
	ErrValidationFailed = errors.New("validation failed")
	// ErrInvalidPolicy is returned for unknown policy names.
	ErrInvalidPolicy = errors.New("invalid on_fail policy")
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyFail, PolicySkip, PolicyDLQ:
		return p, nil
	}
	return "", fmt.Errorf("%w %q (allowed: fail, skip, dlq)", ErrInvalidPolicy, s)
}

// Rejected wraps a record that failed validation with its violations.
type Rejected struct {
	Record pipeline.Record `json:"record" msgpack:"record"`
	Errors []string        `json:"errors" msgpack:"errors"`
}

// Outcome partitions a batch into accepted and rejected records. Both
// partitions keep input order.
type Outcome struct {
	Good pipeline.Batch
	Bad  []Rejected
}

// DeadLetterSink receives rejected records under PolicyDLQ.
type DeadLetterSink interface {
	WriteDeadLetters(bad []Rejected) error
}

// Validator checks batches against a single compiled schema.
type Validator struct {
	schema *Schema
}

// New creates a Validator for schema.
func New(schema *Schema) *Validator {
	return &Validator{schema: schema}
}

// Partition evaluates every record and collects all of its violations.
func (v *Validator) Partition(data pipeline.Batch) (Outcome, error) {
	out := Outcome{Good: pipeline.Batch{}}
	for _, rec := range data {
		errs, err := v.schema.Check(rec)
		if err != nil {
			return Outcome{}, err
		}
		if len(errs) == 0 {
			out.Good = append(out.Good, rec)
			continue
		}
		out.Bad = append(out.Bad, Rejected{Record: rec, Errors: errs})
	}
	return out, nil
}

// Validate returns the accepted records and handles the rejected ones
// according to policy. sink is only used, and then required, for PolicyDLQ.
func (v *Validator) Validate(data pipeline.Batch, policy Policy, sink DeadLetterSink) (pipeline.Batch, error) {
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	out, err := v.Partition(data)
	if err != nil {
		return nil, err
	}
	if len(out.Bad) == 0 {
		return out.Good, nil
	}

	switch policy {
	case PolicyFail:
		return nil, fmt.Errorf("%w for %d records. Example: %s",
			ErrValidationFailed, len(out.Bad), strings.Join(out.Bad[0].Errors, "; "))
	case PolicyDLQ:
		if sink == nil {
			return nil, fmt.Errorf("%w: dlq policy requires a dead-letter sink", ErrInvalidPolicy)
		}
		if err := sink.WriteDeadLetters(out.Bad); err != nil {
			return nil, fmt.Errorf("writing dead letters: %w", err)
		}
	}
	return out.Good, nil
}
