package domain

import "time"

// AuthEventType enumerates audit events emitted by the authentication flows.
type AuthEventType string

const (
	AuthEventLoginSucceeded AuthEventType = "auth.login.succeeded"
	AuthEventLoginFailed    AuthEventType = "auth.login.failed"
	AuthEventTokenRefreshed AuthEventType = "auth.token.refreshed"
	AuthEventLoggedOut      AuthEventType = "auth.logout"
	AuthEventLoggedOutAll   AuthEventType = "auth.logout.all"
)

// AuthEvent represents a login/logout history record. It never carries
// passwords or bearer strings, only correlation data.
type AuthEvent struct {
	EventID    string
	Type       AuthEventType
	UserID     int64
	TokenID    string
	OccurredAt time.Time
	Metadata   map[string]any
}
