package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/otiai10/copy"

	"github.com/makeitso-dev/mis/host"
	"github.com/makeitso-dev/mis/infrastructure/manifest"
)

const lockFile = ".mis.lock"

// lockProject takes the project-wide install lock.
func lockProject(ctx context.Context, project Project) (func(), error) {
	if err := os.MkdirAll(project.PluginsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create plugins directory: %w", err)
	}
	fl := flock.New(filepath.Join(project.MetaDir(), lockFile))
	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("another mis process holds %s", fl.Path())
	}
	return func() { _ = fl.Unlock() }, nil
}

// findInRegistry looks for name under plugins/<name> or <name> in a
// registry checkout, preferring the former.
func findInRegistry(root, name string) (string, bool, error) {
	dirs, err := findManifests(root, "{"+PluginsDirName+"/"+name+","+name+"}/"+host.ManifestFile)
	if err != nil {
		return "", false, err
	}
	if len(dirs) == 0 {
		return "", false, nil
	}
	best := dirs[0]
	for _, d := range dirs {
		if strings.HasPrefix(d, PluginsDirName+"/") {
			best = d
			break
		}
	}
	return filepath.Join(root, filepath.FromSlash(path.Clean(best))), true, nil
}

// installDir copies src into dst through a staging directory, records the
// registry in the copied manifest, and restores config when non-nil.
// Symlinks and VCS metadata are not copied.
func installDir(src, dst, registry string, config []byte) error {
	staging := dst + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clear staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	err := copy.Copy(src, staging, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction { return copy.Skip },
		Skip: func(info os.FileInfo, _, _ string) (bool, error) {
			return info.IsDir() && info.Name() == ".git", nil
		},
	})
	if err != nil {
		return fmt.Errorf("copy plugin: %w", err)
	}

	manifestPath := filepath.Join(staging, host.ManifestFile)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read copied manifest: %w", err)
	}
	data, err = manifest.SetRegistry(data, registry)
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if config != nil {
		if err := os.WriteFile(filepath.Join(staging, host.ConfigFile), config, 0o644); err != nil {
			return fmt.Errorf("restore config: %w", err)
		}
	}

	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("remove previous install: %w", err)
	}
	if err := os.Rename(staging, dst); err != nil {
		return fmt.Errorf("move plugin into place: %w", err)
	}
	return nil
}

// readOptional returns the file contents, or nil when it does not exist.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}
