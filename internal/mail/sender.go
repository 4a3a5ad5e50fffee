package mail

import "context"

// Message is one templated email. Data feeds the provider-side template;
// nothing here renders HTML itself.
type Message struct {
	TemplateID string
	To         string
	ToName     string
	From       string
	FromName   string
	Data       map[string]string
}

// Sender delivers a templated message and reports the provider status code.
// 200/202 mean accepted.
type Sender interface {
	Send(ctx context.Context, msg Message) (int, error)
}

// Accepted reports whether a provider status code counts as a successful send.
func Accepted(status int) bool {
	return status == 200 || status == 202
}
