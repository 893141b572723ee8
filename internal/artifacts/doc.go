// Package artifacts prepares and cleans the on-disk state editor test cases
// depend on: levels under the project, screenshots in the platform cache and
// golden reference images.
//
// Deletion is idempotent. Precursor checks run before the editor is launched
// and fail with harness.ErrPrecursorMissing, so a case that depends on an
// earlier case's level never spends its time budget on a doomed launch.
// LevelLock keeps two harness processes from working on the same level.
package artifacts
