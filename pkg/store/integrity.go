package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/matzehuels/circuitkit/pkg/circuit"
	"github.com/matzehuels/circuitkit/pkg/errors"
)

// hashChunkSize is the read size used when hashing files.
const hashChunkSize = 32 * 1024

// VerifyIntegrity reports whether path exists, is readable and parses as
// JSON. It never returns an error.
func (s *Store) VerifyIntegrity(ctx context.Context, path string) bool {
	data, err := s.read(ctx, path)
	if err != nil {
		return false
	}
	_, err = circuit.ParseTree(data)
	return err == nil
}

// ComputeHash returns the hex-encoded SHA-256 digest of the file at path,
// streamed in fixed-size chunks.
func (s *Store) ComputeHash(ctx context.Context, path string) (string, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return "", err
	}

	var sum string
	err := s.retry(ctx, "hash", path, func() error {
		f, err := s.fs.Open(path)
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeNotFound, "document not found: %s", path)
		}
		if err != nil {
			return retryable(err)
		}
		defer f.Close()

		h, err := hashReader(f)
		if err != nil {
			return retryable(err)
		}
		sum = h
		return nil
	})
	if err != nil {
		return "", ioFailure("hash", path, s.opts.MaxRetries, err)
	}
	return sum, nil
}

// Hash returns the hex-encoded SHA-256 digest of data. It equals ComputeHash
// of a file holding data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
