package shell

import "time"

// HandlerResult is what a command handler reports besides its error:
// the business outcome and how much retrying it took.
type HandlerResult struct {
	// Idempotent is true when the command needed no state change.
	Idempotent bool

	// RetryAttempts is 1 without retries.
	RetryAttempts int

	// TotalRetryDelay counts backoff waits only, not execution time.
	TotalRetryDelay time.Duration

	// LastErrorType is one of the ErrorType* values.
	LastErrorType string

	// RetriesExhausted is true when every attempt failed with a retryable error.
	RetriesExhausted bool
}

// NewSuccessResult reports a state change.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics, false)
}

// NewIdempotentResult reports that nothing had to change.
func NewIdempotentResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics, true)
}

// NewErrorResult keeps the retry information of a failed command.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics, false)
}

func resultFrom(retryMetrics RetryMetrics, idempotent bool) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
