package ports

import "context"

// RegistryFetcher materializes a plugin registry into a local directory.
// Callers validate the URL before calling Fetch.
type RegistryFetcher interface {
	Fetch(ctx context.Context, url, dir string) error
}
