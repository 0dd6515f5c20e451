package seda

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConcurrentConsumers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		consumers int
		limit     bool
		wantErr   error
	}{
		{name: "at ceiling", consumers: 500, limit: true},
		{name: "above ceiling", consumers: 501, limit: true, wantErr: ErrConcurrencyLimitExceeded},
		{name: "above ceiling without enforcement", consumers: 501, limit: false},
		{name: "single consumer", consumers: 1, limit: true},
		{name: "zero consumers", consumers: 0, limit: false, wantErr: ErrInvalidConcurrentConsumers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateConcurrentConsumers(tt.consumers, tt.limit)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConcurrencyLimitExceededError(t *testing.T) {
	t.Parallel()
	err := ValidateConcurrentConsumers(501, true)

	var limitErr *ConcurrencyLimitExceededError
	require.True(t, errors.As(err, &limitErr))
	require.Equal(t, 501, limitErr.Requested)
	require.Equal(t, MaxConcurrentConsumers, limitErr.Limit)
	require.Contains(t, err.Error(), "500")
	require.Contains(t, err.Error(), "501")
}

func TestCapacityMismatchError_Message(t *testing.T) {
	t.Parallel()
	size := 10
	bounded := &CapacityMismatchError{Key: "seda:a", Existing: &size, Requested: 20}
	require.Contains(t, bounded.Error(), "existing queue size 10")
	require.Contains(t, bounded.Error(), "given queue size 20")

	unbounded := &CapacityMismatchError{Key: "seda:a", Requested: 20}
	require.Contains(t, unbounded.Error(), "existing queue size unbounded")
	require.ErrorIs(t, unbounded, ErrCapacityMismatch)
}
