package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 250 * time.Millisecond

// LevelLock hands out per-level locks. Within a process a level is held by one
// caller at a time; across processes a lock file in dir does the same.
type LevelLock struct {
	dir    string
	suffix string

	mu    sync.Mutex
	slots map[string]chan struct{}
	locks map[string]*flock.Flock
}

// NewLevelLock keeps its lock files in dir.
func NewLevelLock(dir string) *LevelLock {
	return &LevelLock{
		dir:    dir,
		suffix: ".level.lock",
		slots:  make(map[string]chan struct{}),
		locks:  make(map[string]*flock.Flock),
	}
}

// Lock waits until the level is free or ctx is done.
func (l *LevelLock) Lock(ctx context.Context, level string) error {
	if err := ValidateName("level", level); err != nil {
		return err
	}
	slot := l.slot(level)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("failed to lock level %s: %w", level, ctx.Err())
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		<-slot
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	filename := l.filename(level)
	locker := flock.New(filename)
	ok, err := locker.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !ok {
		_ = locker.Close()
		<-slot
		if err == nil {
			err = ctx.Err()
		}
		return fmt.Errorf("failed to lock level %s: %w", level, err)
	}

	l.mu.Lock()
	l.locks[filename] = locker
	l.mu.Unlock()
	return nil
}

// TryLock takes the level lock without waiting. It returns false when the
// level is held by this or another process.
func (l *LevelLock) TryLock(level string) (bool, error) {
	if err := ValidateName("level", level); err != nil {
		return false, err
	}
	slot := l.slot(level)
	select {
	case slot <- struct{}{}:
	default:
		return false, nil
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		<-slot
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	filename := l.filename(level)
	locker := flock.New(filename)
	ok, err := locker.TryLock()
	if !ok {
		_ = locker.Close()
		<-slot
		return false, err
	}

	l.mu.Lock()
	l.locks[filename] = locker
	l.mu.Unlock()
	return true, nil
}

// Unlock releases a level. Unlocking a level that is not held does nothing.
func (l *LevelLock) Unlock(level string) {
	filename := l.filename(level)

	l.mu.Lock()
	locker, ok := l.locks[filename]
	if ok {
		delete(l.locks, filename)
	}
	slot := l.slots[level]
	l.mu.Unlock()

	if !ok {
		return
	}
	_ = locker.Close()
	<-slot
}

// UnlockAll releases every level held by this process.
func (l *LevelLock) UnlockAll() {
	l.mu.Lock()
	var held []string
	for level := range l.slots {
		if _, ok := l.locks[l.filename(level)]; ok {
			held = append(held, level)
		}
	}
	l.mu.Unlock()

	for _, level := range held {
		l.Unlock(level)
	}
}

func (l *LevelLock) isLocked(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.locks[l.filename(level)]
	return ok
}

func (l *LevelLock) slot(level string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[level]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[level] = slot
	}
	return slot
}

func (l *LevelLock) filename(level string) string {
	return filepath.Join(l.dir, level+l.suffix)
}
