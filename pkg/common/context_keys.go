package common

type contextKey string

const (
	RequestIDKey      contextKey = "request_id"
	ActorIDContextKey contextKey = "actor_id"
	ActorRoleKey      contextKey = "actor_role"
	LatencyContextKey contextKey = "__execution_time"
)
