package domain

// Error is a single validation failure.
type Error struct {
	Message string `json:"message"`
}

// ValidationHandler receives validation errors as they are found.
type ValidationHandler interface {
	Append(err Error) ValidationHandler
	HasError() bool
	Errors() []Error
}

// Notification accumulates validation errors in the order they were reported.
type Notification struct {
	errors []Error
}

var _ ValidationHandler = (*Notification)(nil)

// NewNotification returns an empty notification.
func NewNotification() *Notification {
	return &Notification{}
}

// NotificationFromError returns a notification holding a single error built
// from err's message.
func NotificationFromError(err error) *Notification {
	n := NewNotification()
	if err != nil {
		n.Append(Error{Message: err.Error()})
	}
	return n
}

// Append records err and returns the receiver for chaining.
func (n *Notification) Append(err Error) ValidationHandler {
	n.errors = append(n.errors, err)
	return n
}

// HasError reports whether at least one error was recorded.
func (n *Notification) HasError() bool {
	return len(n.errors) > 0
}

// Errors returns a copy of the recorded errors.
func (n *Notification) Errors() []Error {
	out := make([]Error, len(n.errors))
	copy(out, n.errors)
	return out
}

// FirstError returns the first recorded error, or nil when there is none.
func (n *Notification) FirstError() *Error {
	if len(n.errors) == 0 {
		return nil
	}
	first := n.errors[0]
	return &first
}
