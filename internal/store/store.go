// Package store is the local data layer: four JSON records on a
// key-value backend, with defaulting for never-written records and
// per-record write serialization.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Betty5562/BookNest/internal/kv"
)

// Record keys. These are the wire contract with existing installs and
// must never change.
const (
	keyBooks       = "books"
	keyUsers       = "users"
	keyUserBooks   = "userBooks"
	keyCurrentUser = "currentUser"
)

// ErrCorruptRecord reports a record that is present but does not parse
// as its expected shape. It is deliberately distinct from "absent": a
// corrupt record propagates instead of silently reading as the default,
// so data loss never hides behind an empty screen.
var ErrCorruptRecord = errors.New("storage record is corrupt")

// ErrUserNotFound reports an update against a user id that no longer
// exists in the users record.
var ErrUserNotFound = errors.New("user not found")

// Store owns the four named records. All mutations of a record run
// under that record's mutex, so read-modify-write sequences (annotation
// updates, signup appends, cascade deletes) cannot lose updates when
// triggers overlap.
type Store struct {
	kv kv.Store

	locks map[string]*sync.Mutex
}

// New wraps the given key-value backend.
func New(backend kv.Store) *Store {
	locks := make(map[string]*sync.Mutex, 4)
	for _, key := range []string{keyBooks, keyUsers, keyUserBooks, keyCurrentUser} {
		locks[key] = &sync.Mutex{}
	}
	return &Store{kv: backend, locks: locks}
}

// Close closes the underlying backend.
func (s *Store) Close() error { return s.kv.Close() }

func (s *Store) lock(key string) *sync.Mutex { return s.locks[key] }

func (s *Store) readRecord(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read record %q: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("record %q: %w: %v", key, ErrCorruptRecord, err)
	}
	return true, nil
}

func (s *Store) writeRecord(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write record %q: %w", key, err)
	}
	return nil
}

// ------------------ Books ------------------

// ReadBooks returns the shared catalog, empty if never written.
func (s *Store) ReadBooks(ctx context.Context) ([]Book, error) {
	var books []Book
	if _, err := s.readRecord(ctx, keyBooks, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// WriteBooks overwrites the catalog. No merge.
func (s *Store) WriteBooks(ctx context.Context, books []Book) error {
	s.lock(keyBooks).Lock()
	defer s.lock(keyBooks).Unlock()
	return s.writeRecord(ctx, keyBooks, books)
}

// MutateBooks applies fn to the catalog under the books lock.
func (s *Store) MutateBooks(ctx context.Context, fn func([]Book) ([]Book, error)) error {
	s.lock(keyBooks).Lock()
	defer s.lock(keyBooks).Unlock()

	var books []Book
	if _, err := s.readRecord(ctx, keyBooks, &books); err != nil {
		return err
	}
	updated, err := fn(books)
	if err != nil {
		return err
	}
	return s.writeRecord(ctx, keyBooks, updated)
}

// ------------------ Users ------------------

// ReadUsers returns all account records, empty if never written.
func (s *Store) ReadUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := s.readRecord(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// WriteUsers overwrites the users record.
func (s *Store) WriteUsers(ctx context.Context, users []User) error {
	s.lock(keyUsers).Lock()
	defer s.lock(keyUsers).Unlock()
	return s.writeRecord(ctx, keyUsers, users)
}

// MutateUsers applies fn to the users record under the users lock.
func (s *Store) MutateUsers(ctx context.Context, fn func([]User) ([]User, error)) error {
	s.lock(keyUsers).Lock()
	defer s.lock(keyUsers).Unlock()

	var users []User
	if _, err := s.readRecord(ctx, keyUsers, &users); err != nil {
		return err
	}
	updated, err := fn(users)
	if err != nil {
		return err
	}
	return s.writeRecord(ctx, keyUsers, updated)
}

// UpdateUser replaces the users entry matching u.ID and, when the
// session pointer refers to the same account, rewrites the pointer too.
// Every caller that mutates a user goes through here so the cached copy
// can never drift from the authoritative record.
func (s *Store) UpdateUser(ctx context.Context, u User) error {
	err := s.MutateUsers(ctx, func(users []User) ([]User, error) {
		for i := range users {
			if users[i].ID == u.ID {
				users[i] = u
				return users, nil
			}
		}
		return nil, fmt.Errorf("update user %s: %w", u.ID, ErrUserNotFound)
	})
	if err != nil {
		return err
	}

	s.lock(keyCurrentUser).Lock()
	defer s.lock(keyCurrentUser).Unlock()
	var cached *User
	if _, err := s.readRecord(ctx, keyCurrentUser, &cached); err != nil {
		return err
	}
	if cached != nil && cached.ID == u.ID {
		return s.writeRecord(ctx, keyCurrentUser, u)
	}
	return nil
}

// ------------------ Per-user annotations ------------------

type userBooksRecord map[string]map[string]Annotation

// ReadUserAnnotations returns the given user's book annotations, empty
// if the user has none yet.
func (s *Store) ReadUserAnnotations(ctx context.Context, userID string) (map[string]Annotation, error) {
	var all userBooksRecord
	if _, err := s.readRecord(ctx, keyUserBooks, &all); err != nil {
		return nil, err
	}
	annotations := all[userID]
	if annotations == nil {
		annotations = map[string]Annotation{}
	}
	return annotations, nil
}

// WriteUserAnnotations replaces only the given user's entry inside the
// shared userBooks record. The read-modify-write runs under the record
// lock, so concurrent writers for different users cannot clobber each
// other.
func (s *Store) WriteUserAnnotations(ctx context.Context, userID string, annotations map[string]Annotation) error {
	return s.mutateUserBooks(ctx, func(all userBooksRecord) userBooksRecord {
		all[userID] = annotations
		return all
	})
}

// MutateUserAnnotations applies fn to one user's annotation map under
// the userBooks lock.
func (s *Store) MutateUserAnnotations(ctx context.Context, userID string, fn func(map[string]Annotation) (map[string]Annotation, error)) error {
	var fnErr error
	err := s.mutateUserBooks(ctx, func(all userBooksRecord) userBooksRecord {
		annotations := all[userID]
		if annotations == nil {
			annotations = map[string]Annotation{}
		}
		updated, err := fn(annotations)
		if err != nil {
			fnErr = err
			return all
		}
		all[userID] = updated
		return all
	})
	if fnErr != nil {
		return fnErr
	}
	return err
}

// RemoveBookAnnotations drops the given book from every user's
// annotation map. Called when a catalog entry is deleted.
func (s *Store) RemoveBookAnnotations(ctx context.Context, bookID string) error {
	return s.mutateUserBooks(ctx, func(all userBooksRecord) userBooksRecord {
		for userID := range all {
			delete(all[userID], bookID)
		}
		return all
	})
}

func (s *Store) mutateUserBooks(ctx context.Context, fn func(userBooksRecord) userBooksRecord) error {
	s.lock(keyUserBooks).Lock()
	defer s.lock(keyUserBooks).Unlock()

	var all userBooksRecord
	if _, err := s.readRecord(ctx, keyUserBooks, &all); err != nil {
		return err
	}
	if all == nil {
		all = userBooksRecord{}
	}
	return s.writeRecord(ctx, keyUserBooks, fn(all))
}

// ------------------ Session pointer ------------------

// ReadCurrentUser returns the active session's user, or nil when no
// session exists. The persisted pointer is a denormalized User copy;
// reads re-resolve it against the users record by id and prefer the
// authoritative entry, so a stale copy is never observable. The cached
// copy is only returned as-is when the id no longer resolves.
func (s *Store) ReadCurrentUser(ctx context.Context) (*User, error) {
	var cached *User
	if _, err := s.readRecord(ctx, keyCurrentUser, &cached); err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, nil
	}

	users, err := s.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == cached.ID {
			return &users[i], nil
		}
	}
	return cached, nil
}

// WriteCurrentUser sets the session pointer.
func (s *Store) WriteCurrentUser(ctx context.Context, u User) error {
	s.lock(keyCurrentUser).Lock()
	defer s.lock(keyCurrentUser).Unlock()
	return s.writeRecord(ctx, keyCurrentUser, u)
}

// ClearCurrentUser removes the session pointer.
func (s *Store) ClearCurrentUser(ctx context.Context) error {
	s.lock(keyCurrentUser).Lock()
	defer s.lock(keyCurrentUser).Unlock()
	if err := s.kv.Delete(ctx, keyCurrentUser); err != nil {
		return fmt.Errorf("clear record %q: %w", keyCurrentUser, err)
	}
	return nil
}

// ------------------ Whole-store operations ------------------

// ClearAll wipes every record. Destructive; the caller owns the
// confirmation step.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, key := range []string{keyBooks, keyUsers, keyUserBooks, keyCurrentUser} {
		s.lock(key).Lock()
		err := s.kv.Delete(ctx, key)
		s.lock(key).Unlock()
		if err != nil {
			return fmt.Errorf("clear record %q: %w", key, err)
		}
	}
	return nil
}
