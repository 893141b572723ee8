package artifacts

import (
	"fmt"
	"path/filepath"
	"strings"

	"edharness/internal/config"
)

// ValidateName rejects a level or screenshot name that is not a single path
// element below its parent directory.
func ValidateName(kind, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%s name is required", kind)
	case name == "." || name == "..":
		return fmt.Errorf("%s name %q is not allowed", kind, name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || filepath.VolumeName(name) != "":
		return fmt.Errorf("%s name %q must not contain path separators", kind, name)
	}
	return nil
}

// LevelPath is the directory holding a level: <engineRoot>/<project>/Levels/<level>.
// Callers that touch the path check level with ValidateName first.
func LevelPath(ws config.Workspace, level string) string {
	return filepath.Join(ws.EngineRoot, ws.Project, "Levels", level)
}

// ScreenshotDir is where the editor writes captured screenshots.
func ScreenshotDir(ws config.Workspace) string {
	return filepath.Join(ws.PlatformCache, ws.ScreenshotSubfolder)
}

// CachedScreenshotPath is where the editor writes the screenshot called name.
func CachedScreenshotPath(ws config.Workspace, name string) string {
	return filepath.Join(ScreenshotDir(ws), name)
}

// CachedScreenshotPaths maps screenshot names to their cache paths, keeping order.
func CachedScreenshotPaths(ws config.Workspace, names []string) []string {
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = CachedScreenshotPath(ws, name)
	}
	return paths
}

// GoldenPath is the reference image for a screenshot: <root>/<platform>/<suite>/<name>.
func GoldenPath(golden config.GoldenConfig, suite, name string) string {
	return filepath.Join(golden.Root, golden.Platform, suite, name)
}

// GoldenPaths maps screenshot names to their golden images, keeping order.
func GoldenPaths(golden config.GoldenConfig, suite string, names []string) []string {
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = GoldenPath(golden, suite, name)
	}
	return paths
}
