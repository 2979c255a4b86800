package validation_test

import (
	"testing"

	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	t.Run("Common tools are accepted unchanged", func(t *testing.T) {
		for _, c := range []string{"git", "npm", "docker", "deno", "kubectl", "/usr/local/bin/terraform"} {
			got, err := validation.ValidateCommand(c)
			require.NoError(t, err, c)
			assert.Equal(t, c, got)
		}
	})

	t.Run("Whitespace is rejected", func(t *testing.T) {
		for _, c := range []string{"rm -rf /", "git status", "git\tstatus", "npm\n", ""} {
			_, err := validation.ValidateCommand(c)
			assert.ErrorIs(t, err, entities.ErrRejected, "%q", c)
		}
	})

	t.Run("Shell metacharacters are rejected", func(t *testing.T) {
		for _, c := range []string{"git&&rm", "a|b", "a;b", "a>b", "a<b", "`id`", "$HOME", "$(id)", "{a}"} {
			_, err := validation.ValidateCommand(c)
			assert.ErrorIs(t, err, entities.ErrRejected, c)
		}
	})

	t.Run("List separators and control characters are rejected", func(t *testing.T) {
		for _, c := range []string{"git,rm", "deno,", "git\x00", "node\x7f"} {
			_, err := validation.ValidateCommand(c)
			assert.ErrorIs(t, err, entities.ErrRejected, "%q", c)
		}
	})

	t.Run("Dangerous executables are rejected", func(t *testing.T) {
		for _, c := range []string{"rm", "sudo", "curl", "wget", "ssh", "dd", "mkfs", "eval", "RM", "/bin/rm", "sudo.exe", `C:\tools\curl.exe`} {
			_, err := validation.ValidateCommand(c)
			assert.ErrorIs(t, err, entities.ErrRejected, c)
		}
	})
}
