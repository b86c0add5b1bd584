package domain

// Result is what an event handler reports back to the trigger
// infrastructure. Handlers always return a Result, never an error: a failure
// is carried in Err so the infrastructure sees a normal return either way
// and never retries a permanently-failing event.
type Result struct {
	Success          bool   `json:"success,omitempty"`
	Skipped          bool   `json:"skipped,omitempty"`
	Reason           string `json:"reason,omitempty"`
	NotificationType string `json:"notificationType,omitempty"`
	Action           string `json:"action,omitempty"`
	Count            int    `json:"count,omitempty"`
	Err              string `json:"error,omitempty"`
}

// Sent marks a successfully dispatched notification of the given type.
func Sent(notificationType string) Result {
	return Result{Success: true, NotificationType: notificationType}
}

// Removed marks a successful compensating deletion.
func Removed(count int) Result {
	return Result{Success: true, Action: "notification_removed", Count: count}
}

// Skip marks a deliberate no-op (malformed event, missing entity, self-action).
func Skip(reason string) Result {
	return Result{Skipped: true, Reason: reason}
}

// Failure converts an internal error into a structured result.
func Failure(err error) Result {
	return Result{Err: err.Error()}
}
