package store

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// OSFS is a billy.Filesystem over the native filesystem. Paths are used as
// given, so relative paths resolve against the working directory.
//
// Files opened through OSFS are *os.File backed and support Sync.
type OSFS struct {
	osfs.ChrootOS
}

// NewOSFS returns the native filesystem.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Chroot returns a filesystem rooted at path.
func (o *OSFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns "/".
func (o *OSFS) Root() string {
	return "/"
}

var _ billy.Filesystem = (*OSFS)(nil)
