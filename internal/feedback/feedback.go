package feedback

import "context"

// Channel is the user-facing side of a workflow: a busy indicator, transient toasts,
// modal alerts and yes/no confirmation.
// Alert blocks until the user acknowledges it. Confirm returns false when the user
// declines or dismisses the prompt.
type Channel interface {
	ShowProgress(ctx context.Context, label string)
	HideProgress(ctx context.Context)
	Toast(ctx context.Context, message string)
	Alert(ctx context.Context, title, message, okLabel string)
	Confirm(ctx context.Context, title, message, yesLabel, noLabel string) bool
}
