// Package git fetches plugin registries with shallow clones.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/sethvargo/go-retry"

	"github.com/makeitso-dev/mis/domain/ports"
)

var _ ports.RegistryFetcher = (*Cloner)(nil)

// Cloner shallow-clones registries, retrying transient failures.
type Cloner struct {
	logger  *slog.Logger
	retries uint64
	backoff time.Duration
}

// ClonerOption configures a Cloner.
type ClonerOption func(*Cloner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClonerOption {
	return func(c *Cloner) {
		c.logger = l
	}
}

// WithRetries sets how many times a failed clone is retried.
func WithRetries(n uint64) ClonerOption {
	return func(c *Cloner) {
		c.retries = n
	}
}

// WithBackoff sets the initial delay between attempts.
func WithBackoff(d time.Duration) ClonerOption {
	return func(c *Cloner) {
		c.backoff = d
	}
}

// NewCloner creates a cloner.
func NewCloner(opts ...ClonerOption) *Cloner {
	c := &Cloner{
		logger:  slog.Default(),
		retries: 3,
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch clones url at depth 1 into dir. dir is replaced on every attempt.
func (c *Cloner) Fetch(ctx context.Context, url, dir string) error {
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clear clone directory: %w", err)
		}
		_, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
			URL:          url,
			Depth:        1,
			SingleBranch: true,
			Tags:         gogit.NoTags,
		})
		if err == nil {
			return nil
		}
		if permanent(err) {
			return err
		}
		c.logger.Warn("registry clone failed, retrying", "url", url, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

func permanent(err error) bool {
	return errors.Is(err, transport.ErrRepositoryNotFound) ||
		errors.Is(err, transport.ErrEmptyRemoteRepository) ||
		errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed) ||
		errors.Is(err, transport.ErrInvalidAuthMethod) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
