package out

import "context"

// Crontab reads and replaces the operator's crontab.
type Crontab interface {
	// Read returns the current crontab, or an empty string if there is none.
	Read(ctx context.Context) (string, error)

	// Write replaces the crontab with content.
	Write(ctx context.Context, content string) error
}
