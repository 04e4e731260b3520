// Package store provides crash-safe persistence for circuit documents.
//
// # Overview
//
// A [Store] loads and saves documents on a go-billy filesystem. The default
// filesystem is the host OS ([OSFS]); tests use an in-memory filesystem.
//
//	s, err := store.New(store.DefaultOptions())
//	doc, err := s.Load(ctx, "blinker.circuit.json")
//	err = s.Save(ctx, "blinker.circuit.json", doc, store.SaveOptions{})
//
// # Atomic Writes
//
// [Store.Save] serializes the document, writes it to a temporary file in the
// target's directory, syncs it, and renames it over the target. The
// temporary file takes the permissions of the file it replaces. A reader
// never observes a partially written target. When any step fails the
// temporary file is removed and the target is left as it was.
//
// # Backups
//
// With backups enabled, the current target is copied to <path>.backup after
// the new content is synced to its temporary file and before the rename
// installs it. If the rename fails, the backup is put back to what it held
// before the save. A failed backup is logged and reported through
// [observability.StoreHooks.OnBackup]; the save proceeds.
//
// # Locking
//
// [Store.WithLock] serializes cooperating writers with a sentinel file at
// <path>.lock created exclusively. Acquisition polls until the lock timeout
// and then fails with LOCKED. Writers that do not take the lock can still
// race; the last rename wins.
//
// # Errors
//
// All failures are *errors.Error values with one of the codes NOT_FOUND,
// MALFORMED, IO_FAILURE, INTEGRITY_VIOLATION, LOCKED or INVALID_PATH.
// Transient read and write failures are retried with exponential backoff
// before IO_FAILURE is returned.
package store
