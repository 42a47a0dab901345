package audithook

// Action constants for audit events.
const (
	// Performer actions
	ActionPerformerRegistered  = "performer.registered"
	ActionPerformerDeactivated = "performer.deactivated"

	// Session actions
	ActionSessionStarted = "session.started"
	ActionSessionEnded   = "session.ended"

	// Settlement actions
	ActionTipSettled = "tip.settled"
	ActionFeeUpdated = "fee.updated"
)

// Resource constants for audit events.
const (
	ResourcePerformer = "performer"
	ResourceSession   = "session"
	ResourceTip       = "tip"
	ResourceFee       = "fee"
)

// Category constants for audit events.
const (
	CategoryRegistry   = "registry"
	CategorySession    = "session"
	CategorySettlement = "settlement"
	CategoryAdmin      = "admin"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
