package validation_test

import (
	"testing"

	"github.com/makeitso-dev/mis/application/validation"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	t.Run("Ordinary paths are accepted unchanged", func(t *testing.T) {
		for _, p := range []string{".", "./src", "data/out.json", "/home/dev/project", ".makeitso", "/var/lib/app", "--allow-all"} {
			got, err := validation.ValidatePath(p)
			require.NoError(t, err, p)
			assert.Equal(t, p, got)
		}
	})

	t.Run("Empty paths are rejected", func(t *testing.T) {
		for _, p := range []string{"", "   ", "\t"} {
			_, err := validation.ValidatePath(p)
			assert.ErrorIs(t, err, entities.ErrRejected, "%q", p)
		}
	})

	t.Run("Any parent traversal is rejected", func(t *testing.T) {
		for _, p := range []string{"..", "../x", "a/../b", "a/..", `..\windows`, "file..txt"} {
			_, err := validation.ValidatePath(p)
			assert.ErrorIs(t, err, entities.ErrRejected, p)
		}
	})

	t.Run("System directories are rejected", func(t *testing.T) {
		for _, p := range []string{
			"/etc/passwd", "/root/.ssh/id_rsa", "/sys/kernel", "/proc/self/environ",
			"/dev/sda", "/tmp/x", "/boot/vmlinuz", "/usr/bin/env", "/usr/sbin/sshd",
			"/bin/sh", "/sbin/init", `C:\Windows\System32`, `C:\Program Files\App`,
			`C:\Users\admin`, "/System/Library", "/Library/Keychains", "/Applications/X.app",
		} {
			_, err := validation.ValidatePath(p)
			assert.ErrorIs(t, err, entities.ErrRejected, p)
		}
	})

	t.Run("Bare system directories and roots are rejected", func(t *testing.T) {
		for _, p := range []string{"/etc", "/tmp", "/", `C:\`, `c:\windows`} {
			_, err := validation.ValidatePath(p)
			assert.ErrorIs(t, err, entities.ErrRejected, p)
		}
	})

	t.Run("List separators and control characters are rejected", func(t *testing.T) {
		for _, p := range []string{"./src,/etc", "docs,", "data\nout", "a\x00b"} {
			_, err := validation.ValidatePath(p)
			assert.ErrorIs(t, err, entities.ErrRejected, "%q", p)
		}
	})

	t.Run("Windows prefixes ignore case", func(t *testing.T) {
		_, err := validation.ValidatePath(`c:\WINDOWS\system32`)
		assert.ErrorIs(t, err, entities.ErrRejected)
	})

	t.Run("Look-alike directories are accepted", func(t *testing.T) {
		for _, p := range []string{"/etcetera/file", "/tmpfiles", "/home/dev/etc/app.conf"} {
			_, err := validation.ValidatePath(p)
			assert.NoError(t, err, p)
		}
	})
}
