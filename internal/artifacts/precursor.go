package artifacts

import (
	"errors"
	"fmt"
	"os"

	"edharness/internal/config"
	"edharness/internal/harness"
)

// RequireLevel fails with harness.ErrPrecursorMissing when the level an earlier
// case should have produced does not exist.
func RequireLevel(ws config.Workspace, caseID, level string) error {
	if err := ValidateName("level", level); err != nil {
		return harness.NewError(harness.ErrPrecursorMissing, caseID, err)
	}
	path := LevelPath(ws, level)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return harness.NewError(harness.ErrPrecursorMissing, caseID,
			fmt.Errorf("level %q does not exist at %s; run the case that sets it up first", level, path))
	case err != nil:
		return harness.NewError(harness.ErrPrecursorMissing, caseID, fmt.Errorf("failed to stat level: %w", err))
	case !info.IsDir():
		return harness.NewError(harness.ErrPrecursorMissing, caseID, fmt.Errorf("level path %s is not a directory", path))
	}
	return nil
}

// RequireFiles fails with harness.ErrPrecursorMissing naming every path that is
// not a regular file.
func RequireFiles(caseID string, paths ...string) error {
	var missing []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return harness.NewError(harness.ErrPrecursorMissing, caseID, fmt.Errorf("missing files: %v", missing))
}
