package store

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/errors"
	"github.com/matzehuels/circuitkit/pkg/observability"
)

// Default option values.
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = 100 * time.Millisecond
	DefaultBackupSuffix = ".backup"
	DefaultLockSuffix   = ".lock"
	DefaultLockTimeout  = 5 * time.Second
	DefaultLockPoll     = 10 * time.Millisecond
)

// Options configures a Store.
type Options struct {
	// FS is the filesystem documents live on. Nil means the native filesystem.
	FS billy.Filesystem

	// Logger receives retry, backup and lock diagnostics. Nil means log.Default().
	Logger *log.Logger

	// MaxRetries bounds the attempts for transient I/O failures.
	MaxRetries int

	// RetryDelay is the first backoff delay; it doubles after each attempt.
	RetryDelay time.Duration

	// Backup copies the existing target to <path><BackupSuffix> before each
	// save. SaveOptions.Backup overrides it per call.
	Backup       bool
	BackupSuffix string

	LockSuffix  string
	LockTimeout time.Duration
	LockPoll    time.Duration
}

// DefaultOptions returns the options used by the CLI when no config is present.
func DefaultOptions() Options {
	return Options{
		MaxRetries:   DefaultMaxRetries,
		RetryDelay:   DefaultRetryDelay,
		Backup:       true,
		BackupSuffix: DefaultBackupSuffix,
		LockSuffix:   DefaultLockSuffix,
		LockTimeout:  DefaultLockTimeout,
		LockPoll:     DefaultLockPoll,
	}
}

// Check inspects a document and returns a non-nil error to reject it.
type Check func(*circuit.Document) error

// SaveOptions adjusts a single Save call.
type SaveOptions struct {
	// Backup overrides Options.Backup when non-nil.
	Backup *bool

	// Validate runs before anything touches the disk. A rejection fails the
	// save with INTEGRITY_VIOLATION.
	Validate Check
}

// Store loads and saves circuit documents. It keeps no state between calls;
// every operation reopens the path.
type Store struct {
	fs   billy.Filesystem
	log  *log.Logger
	opts Options
}

// New creates a Store. Zero numeric options and empty suffixes take their
// defaults; Backup is used as given.
func New(opts Options) (*Store, error) {
	if opts.FS == nil {
		opts.FS = NewOSFS()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = DefaultBackupSuffix
	}
	if opts.LockSuffix == "" {
		opts.LockSuffix = DefaultLockSuffix
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.LockPoll <= 0 {
		opts.LockPoll = DefaultLockPoll
	}
	if err := errors.ValidateSuffix(opts.BackupSuffix); err != nil {
		return nil, err
	}
	if err := errors.ValidateSuffix(opts.LockSuffix); err != nil {
		return nil, err
	}
	if opts.BackupSuffix == opts.LockSuffix {
		return nil, errors.New(errors.ErrCodeInvalidInput, "backup and lock suffixes must differ: %q", opts.BackupSuffix)
	}
	return &Store{fs: opts.FS, log: opts.Logger, opts: opts}, nil
}

// BackupPath returns the backup location for path.
func (s *Store) BackupPath(path string) string { return path + s.opts.BackupSuffix }

// LockPath returns the lock sentinel location for path.
func (s *Store) LockPath(path string) string { return path + s.opts.LockSuffix }

func (s *Store) hooks() observability.StoreHooks { return observability.Store() }

// =============================================================================
// Load
// =============================================================================

// Load reads and decodes the document at path. Each check runs on the decoded
// document; the first rejection fails the load with INTEGRITY_VIOLATION and
// the document is discarded.
func (s *Store) Load(ctx context.Context, path string, checks ...Check) (doc *circuit.Document, err error) {
	start := time.Now()
	size := 0
	defer func() { s.hooks().OnLoad(ctx, path, size, time.Since(start), err) }()

	data, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	size = len(data)

	doc, err = circuit.Decode(data)
	if err != nil {
		return nil, malformed(path, data, err)
	}
	for _, check := range checks {
		if cerr := check(doc); cerr != nil {
			return nil, errors.Wrap(errors.ErrCodeIntegrityViolation, cerr, "document %s rejected", path)
		}
	}

	s.log.Debug("loaded document", "path", path, "bytes", size, "components", len(doc.Components))
	return doc, nil
}

// LoadTree reads path and parses it into a generic JSON tree without
// decoding it into the typed model. Schema validation operates on the tree.
func (s *Store) LoadTree(ctx context.Context, path string) (tree any, err error) {
	start := time.Now()
	size := 0
	defer func() { s.hooks().OnLoad(ctx, path, size, time.Since(start), err) }()

	data, err := s.read(ctx, path)
	if err != nil {
		return nil, err
	}
	size = len(data)

	tree, err = circuit.ParseTree(data)
	if err != nil {
		return nil, malformed(path, data, err)
	}
	return tree, nil
}

// ReadRaw returns the bytes at path with the same retry and error policy as
// Load.
func (s *Store) ReadRaw(ctx context.Context, path string) ([]byte, error) {
	return s.read(ctx, path)
}

// read returns the content of path, retrying transient failures.
func (s *Store) read(ctx context.Context, path string) ([]byte, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return nil, err
	}

	var data []byte
	err := s.retry(ctx, "load", path, func() error {
		info, err := s.fs.Stat(path)
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeNotFound, "document not found: %s", path)
		}
		if err != nil {
			return retryable(err)
		}
		if info.IsDir() {
			return errors.New(errors.ErrCodeIOFailure, "not a file: %s", path)
		}

		f, err := s.fs.Open(path)
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeNotFound, "document not found: %s", path)
		}
		if err != nil {
			return retryable(err)
		}
		defer f.Close()

		b, err := io.ReadAll(f)
		if err != nil {
			return retryable(err)
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, ioFailure("read", path, s.opts.MaxRetries, err)
	}
	return data, nil
}

// =============================================================================
// Save
// =============================================================================

// Save writes doc to path atomically. See the package documentation for the
// write sequence and the backup policy.
func (s *Store) Save(ctx context.Context, path string, doc *circuit.Document, opts SaveOptions) (err error) {
	start := time.Now()
	size := 0
	defer func() { s.hooks().OnSave(ctx, path, size, time.Since(start), err) }()

	if err := errors.ValidateDocumentPath(path); err != nil {
		return err
	}
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if opts.Validate != nil {
		if verr := opts.Validate(doc); verr != nil {
			return errors.Wrap(errors.ErrCodeIntegrityViolation, verr, "document rejected before saving to %s", path)
		}
	}

	data, err := circuit.Encode(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIntegrityViolation, err, "serialize document for %s", path)
	}
	size = len(data)

	if err := s.WriteRaw(ctx, path, data, s.backupEnabled(opts)); err != nil {
		return err
	}
	s.log.Debug("saved document", "path", path, "bytes", size)
	return nil
}

// WriteRaw installs data at path with the same atomic write and backup
// sequence as Save.
func (s *Store) WriteRaw(ctx context.Context, path string, data []byte, backup bool) error {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIOFailure, err, "create directory for %s", path)
		}
	}

	err := s.retry(ctx, "save", path, func() error {
		return s.install(ctx, path, data, backup)
	})
	if err != nil {
		return ioFailure("write", path, s.opts.MaxRetries, err)
	}
	return nil
}

func (s *Store) backupEnabled(opts SaveOptions) bool {
	if opts.Backup != nil {
		return *opts.Backup
	}
	return s.opts.Backup
}

// =============================================================================
// Error mapping
// =============================================================================

// malformed converts a decode failure into a MALFORMED error, attaching the
// source position when the decoder reported one.
func malformed(path string, data []byte, cause error) error {
	e := errors.Wrap(errors.ErrCodeMalformed, cause, "invalid document %s", path)

	var syntax *json.SyntaxError
	var trailing *circuit.TrailingDataError
	switch {
	case errors.As(cause, &syntax):
		return e.At(errors.PositionAt(data, syntax.Offset-1))
	case errors.As(cause, &trailing):
		return e.At(errors.PositionAt(data, trailing.Offset))
	case cause == io.EOF || cause == io.ErrUnexpectedEOF:
		return e.At(errors.PositionAt(data, int64(len(data))))
	}
	return e
}

// ioFailure passes through classified errors and wraps the rest as IO_FAILURE.
func ioFailure(op, path string, attempts int, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	if isRetryable(err) {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "%s %s failed after %d attempts", op, path, attempts)
	}
	return errors.Wrap(errors.ErrCodeIOFailure, err, "%s %s", op, path)
}
