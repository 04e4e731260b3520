package store

import (
	"context"
	"os"
	"time"

	"github.com/matzehuels/circuitkit/pkg/errors"
)

// Lock acquires the exclusive sentinel for path, polling until the lock
// timeout elapses. The returned release function removes the sentinel and is
// safe to call more than once.
func (s *Store) Lock(ctx context.Context, path string) (release func(), err error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return nil, err
	}
	lockPath := s.LockPath(path)
	start := time.Now()
	deadline := start.Add(s.opts.LockTimeout)
	defer func() { s.hooks().OnLock(ctx, path, time.Since(start), err) }()

	for attempt := 0; ; attempt++ {
		f, err := s.fs.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			if attempt > 0 {
				s.log.Debug("lock acquired", "path", path, "waited", time.Since(start).Round(time.Millisecond))
			}
			return s.releaser(lockPath), nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "create lock %s", lockPath)
		}
		if attempt == 0 {
			s.log.Debug("waiting for lock", "path", path, "lock", lockPath, "timeout", s.opts.LockTimeout)
		}
		if !time.Now().Add(s.opts.LockPoll).Before(deadline) {
			return nil, errors.New(errors.ErrCodeLocked, "could not acquire lock for %s within %s", path, s.opts.LockTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeLocked, ctx.Err(), "lock wait for %s cancelled", path)
		case <-time.After(s.opts.LockPoll):
		}
	}
}

func (s *Store) releaser(lockPath string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if err := s.fs.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove lock", "lock", lockPath, "err", err)
		}
	}
}

// WithLock runs fn while holding the lock for path. The lock is released when
// fn returns, whether or not it failed.
func (s *Store) WithLock(ctx context.Context, path string, fn func(ctx context.Context) error) error {
	release, err := s.Lock(ctx, path)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}
