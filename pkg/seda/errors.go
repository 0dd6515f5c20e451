package seda

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrCapacityMismatch           = errors.New("queue capacity mismatch")
	ErrConcurrencyLimitExceeded   = errors.New("concurrent consumers limit exceeded")
	ErrInvalidConcurrentConsumers = errors.New("invalid concurrent consumers: must be greater than 0")
	ErrUnknownParameter           = errors.New("unknown endpoint parameter")
	ErrInvalidParameter           = errors.New("invalid endpoint parameter")
	ErrEndpointNotStarted         = errors.New("endpoint not started")
)

// CapacityMismatchError reports an Acquire whose requested capacity differs
// from the capacity the channel was created with.
type CapacityMismatchError struct {
	Key       string
	Existing  *int // nil when the existing queue is unbounded
	Requested int
}

func (e *CapacityMismatchError) Error() string {
	existing := "unbounded"
	if e.Existing != nil {
		existing = strconv.Itoa(*e.Existing)
	}
	return fmt.Sprintf(
		"cannot use existing queue %s: existing queue size %s does not match given queue size %d",
		e.Key, existing, e.Requested,
	)
}

func (e *CapacityMismatchError) Is(target error) bool {
	return target == ErrCapacityMismatch
}

// ConcurrencyLimitExceededError reports an endpoint declaring more consumer
// workers than the enforced ceiling.
type ConcurrencyLimitExceededError struct {
	Requested int
	Limit     int
}

func (e *ConcurrencyLimitExceededError) Error() string {
	return fmt.Sprintf(
		"limitConcurrentConsumers is enabled: concurrentConsumers cannot exceed %d, was %d",
		e.Limit, e.Requested,
	)
}

func (e *ConcurrencyLimitExceededError) Is(target error) bool {
	return target == ErrConcurrencyLimitExceeded
}
