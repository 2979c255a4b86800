package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/makeitso-dev/mis/application/permissions"
	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/host"
)

// PluginsDirName is the directory under the metadata directory that holds
// installed plugins.
const PluginsDirName = "plugins"

// Project is a directory tree with a .makeitso metadata directory at Root.
type Project struct {
	Root string
}

// FindProject walks up from start to the first directory containing
// .makeitso.
func FindProject(start string) (Project, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Project{}, fmt.Errorf("resolve %s: %w", start, err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, permissions.MetadataDir))
		if err == nil && info.IsDir() {
			return Project{Root: dir}, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Project{}, fmt.Errorf("inspect %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Project{}, &entities.ProjectNotFoundError{Start: start}
		}
		dir = parent
	}
}

// MetaDir is the project's .makeitso directory.
func (p Project) MetaDir() string {
	return filepath.Join(p.Root, permissions.MetadataDir)
}

// PluginsDir is where plugins are installed.
func (p Project) PluginsDir() string {
	return filepath.Join(p.MetaDir(), PluginsDirName)
}

// PluginDir is the install directory of one plugin.
func (p Project) PluginDir(name string) string {
	return filepath.Join(p.PluginsDir(), name)
}

// ManifestPath is the manifest of one installed plugin.
func (p Project) ManifestPath(name string) string {
	return filepath.Join(p.PluginDir(name), host.ManifestFile)
}

// InstalledPlugins lists plugin directories that contain a manifest.
func (p Project) InstalledPlugins() ([]string, error) {
	return findManifests(p.PluginsDir(), "*/"+host.ManifestFile)
}

// IsInstalled reports whether name has a manifest under the plugins dir.
func (p Project) IsInstalled(name string) bool {
	_, err := os.Stat(p.ManifestPath(name))
	return err == nil
}

// findManifests globs pattern under root and returns the sorted parent
// directory of each match. A missing root yields nothing.
func findManifests(root, pattern string) ([]string, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", root, err)
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		dirs = append(dirs, path.Dir(m))
	}
	sort.Strings(dirs)
	return dirs, nil
}
