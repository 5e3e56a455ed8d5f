package service

// Notifier publishes workflow events to connected clients. The
// websocket hub satisfies this; services tolerate a nil notifier.
type Notifier interface {
	Publish(event string, payload interface{})
}

// Workflow event names published over the notifier.
const (
	EventExpenseSubmitted = "expense.submitted"
	EventExpenseApproved  = "expense.approved"
	EventExpenseRejected  = "expense.rejected"
)
