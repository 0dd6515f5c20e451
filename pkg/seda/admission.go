package seda

// ValidateConcurrentConsumers checks a consumer concurrency declaration made
// at endpoint setup. When limit is true, more than MaxConcurrentConsumers
// workers is rejected with a *ConcurrencyLimitExceededError.
func ValidateConcurrentConsumers(consumers int, limit bool) error {
	if consumers < 1 {
		return ErrInvalidConcurrentConsumers
	}
	if limit && consumers > MaxConcurrentConsumers {
		return &ConcurrencyLimitExceededError{
			Requested: consumers,
			Limit:     MaxConcurrentConsumers,
		}
	}
	return nil
}
