package artifacts

import (
	"errors"
	"fmt"
	"os"

	"edharness/internal/config"
	"edharness/pkg/logging"
)

// DeletePath removes a file or a directory tree. A path that does not exist is
// not an error, so cleanup can run any number of times.
func DeletePath(path string) error {
	if path == "" {
		return fmt.Errorf("refusing to delete an empty path")
	}

	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("Artifacts", "%s already absent", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	logging.Debug("Artifacts", "deleted %s", path)
	return nil
}

// DeletePaths deletes every path and reports all failures together.
func DeletePaths(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := DeletePath(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CleanLevel deletes a level directory from the project.
func CleanLevel(ws config.Workspace, level string) error {
	if err := ValidateName("level", level); err != nil {
		return err
	}
	logging.Info("Artifacts", "cleaning level %s", level)
	return DeletePath(LevelPath(ws, level))
}

// CleanScreenshots deletes previously captured screenshots from the cache so a
// stale image is never compared.
func CleanScreenshots(ws config.Workspace, names []string) error {
	for _, name := range names {
		if err := ValidateName("screenshot", name); err != nil {
			return err
		}
	}
	return DeletePaths(CachedScreenshotPaths(ws, names)...)
}
