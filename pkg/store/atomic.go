package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/matzehuels/circuitkit/pkg/errors"
)

// syncer is implemented by files backed by the OS.
type syncer interface {
	Sync() error
}

// fileChmoder is implemented by files backed by the OS.
type fileChmoder interface {
	Chmod(mode os.FileMode) error
}

// defaultFileMode is the mode of documents that did not exist before.
const defaultFileMode os.FileMode = 0o644

// writeAtomic stages data next to path and renames it into place.
func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := s.stage(path, data)
	if err != nil {
		return err
	}
	return s.commit(tmp, path)
}

// stage writes data to a temporary sibling of path, syncs and closes it. The
// temporary file takes the mode of the existing target, or defaultFileMode.
// On failure the temporary file is removed. Failures are marked retryable.
func (s *Store) stage(path string, data []byte) (tmp string, err error) {
	dir, base := filepath.Dir(path), filepath.Base(path)

	f, err := s.fs.TempFile(dir, "."+base+".")
	if err != nil {
		return "", retryable(fmt.Errorf("create temp file: %w", err))
	}
	tmp = f.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmp)
		}
	}()

	if err := s.chmod(f, tmp, s.modeOf(path)); err != nil {
		_ = f.Close()
		return "", retryable(fmt.Errorf("chmod %s: %w", tmp, err))
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", retryable(fmt.Errorf("write %s: %w", tmp, err))
	}
	if sf, ok := f.(syncer); ok {
		if err := sf.Sync(); err != nil {
			_ = f.Close()
			return "", retryable(fmt.Errorf("sync %s: %w", tmp, err))
		}
	}
	if err := f.Close(); err != nil {
		return "", retryable(fmt.Errorf("close %s: %w", tmp, err))
	}
	return tmp, nil
}

// commit renames a staged file over path, removing it if the rename fails.
func (s *Store) commit(tmp, path string) error {
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return retryable(fmt.Errorf("rename %s: %w", tmp, err))
	}
	return nil
}

func (s *Store) modeOf(path string) os.FileMode {
	info, err := s.fs.Stat(path)
	if err != nil {
		return defaultFileMode
	}
	return info.Mode().Perm()
}

func (s *Store) chmod(f billy.File, name string, mode os.FileMode) error {
	if fc, ok := f.(fileChmoder); ok {
		return fc.Chmod(mode)
	}
	if ch, ok := s.fs.(billy.Change); ok {
		return ch.Chmod(name, mode)
	}
	return nil
}

// install stages data, takes the backup of path when requested and renames
// the staged file over path. The backup is only touched once the new content
// is on stable storage, and is put back to its previous state if the rename
// fails.
func (s *Store) install(ctx context.Context, path string, data []byte, backup bool) error {
	tmp, err := s.stage(path, data)
	if err != nil {
		return err
	}

	var undo func()
	if backup {
		undo = s.backup(ctx, path)
	}

	if err := s.commit(tmp, path); err != nil {
		if undo != nil {
			undo()
		}
		return err
	}
	return nil
}

// backup copies the current content of path to its backup location. A missing
// target is not an error. Failures are logged and reported to the store hooks;
// the caller's save continues either way.
//
// The returned function restores the backup location to what it held before
// the call. It is nil when nothing was written.
func (s *Store) backup(ctx context.Context, path string) (undo func()) {
	backupPath := s.BackupPath(path)

	data, err := s.readFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	previous, prevErr := s.readFile(backupPath)
	if err == nil {
		err = s.writeAtomic(backupPath, data)
	}
	s.hooks().OnBackup(ctx, path, backupPath, err)
	if err != nil {
		s.log.Warn("backup failed, continuing without backup", "path", path, "backup", backupPath, "err", err)
		return nil
	}
	s.log.Debug("backup created", "path", path, "backup", backupPath)

	return func() {
		var err error
		switch {
		case prevErr == nil:
			err = s.writeAtomic(backupPath, previous)
		case os.IsNotExist(prevErr):
			err = s.fs.Remove(backupPath)
		default:
			err = prevErr
		}
		if err != nil {
			s.log.Warn("could not roll back backup", "backup", backupPath, "err", err)
		}
	}
}

// RestoreBackup copies the backup of path over path. It reports false, with a
// nil error, when no backup exists.
func (s *Store) RestoreBackup(ctx context.Context, path string) (bool, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return false, err
	}
	backupPath := s.BackupPath(path)

	var data []byte
	err := s.retry(ctx, "restore", path, func() error {
		b, err := s.readFile(backupPath)
		if err != nil && !os.IsNotExist(err) {
			return retryable(err)
		}
		data = b
		return err
	})
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, ioFailure("read backup", backupPath, s.opts.MaxRetries, err)
	}

	if err := s.retry(ctx, "restore", path, func() error {
		return s.writeAtomic(path, data)
	}); err != nil {
		return false, ioFailure("restore", path, s.opts.MaxRetries, err)
	}
	s.log.Debug("backup restored", "path", path, "backup", backupPath)
	return true, nil
}

// HasBackup reports whether a backup exists for path.
func (s *Store) HasBackup(path string) bool {
	info, err := s.fs.Stat(s.BackupPath(path))
	return err == nil && !info.IsDir()
}

// readFile reads name without retries. Errors are returned unwrapped so
// os.IsNotExist works on them.
func (s *Store) readFile(name string) ([]byte, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
