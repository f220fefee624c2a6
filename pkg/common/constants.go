package common

const (
	RequestIDHeader  = "X-Request-Id"
	RetryAfterHeader = "Retry-After"
)
