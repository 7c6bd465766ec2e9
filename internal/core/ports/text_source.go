package ports

import "context"

// TextSource fetches a single piece of text from an external service.
type TextSource interface {
	Fetch(ctx context.Context) (string, error)
}
