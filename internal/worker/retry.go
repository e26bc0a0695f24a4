package worker

import "time"

// Стратегии backoff.
const (
	BackoffExponential = "exponential"
	BackoffFixed       = "fixed"
)

// RetryPolicy — повторы ensure после разрешения graft base.
type RetryPolicy struct {
	// MaxAttempts — максимум вызовов Ensure на один action (включая первый).
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Backoff — "exponential" или "fixed".
	Backoff string
}

// DefaultRetryPolicy — политика по умолчанию.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: 5 * time.Second,
	MaxDelay:     60 * time.Second,
	Backoff:      BackoffExponential,
}

// calculateBackoff вычисляет задержку перед попыткой attempt+1.
//
//   - exponential: initialDelay * 2^(attempt-1), не больше maxDelay
//   - fixed: initialDelay
func calculateBackoff(attempt int, policy RetryPolicy) time.Duration {
	initialDelay := policy.InitialDelay
	if initialDelay <= 0 {
		initialDelay = time.Second
	}

	maxDelay := policy.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	delay := initialDelay
	if policy.Backoff == BackoffExponential {
		for i := 1; i < attempt && delay < maxDelay; i++ {
			delay *= 2
		}
	}

	return min(delay, maxDelay)
}
