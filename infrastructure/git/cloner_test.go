package git_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/makeitso-dev/mis/infrastructure/git"
	"github.com/stretchr/testify/assert"
)

func TestCloner_Fetch(t *testing.T) {
	t.Run("Missing repository fails", func(t *testing.T) {
		c := git.NewCloner(git.WithRetries(1), git.WithBackoff(time.Millisecond))
		err := c.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "clone"))
		assert.Error(t, err)
	})

	t.Run("Cancelled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := git.NewCloner(git.WithRetries(5), git.WithBackoff(time.Hour))
		start := time.Now()
		err := c.Fetch(ctx, "https://github.com/makeitso-dev/does-not-matter.git", filepath.Join(t.TempDir(), "clone"))
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Minute)
	})
}
