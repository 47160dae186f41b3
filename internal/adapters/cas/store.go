// Package cas persists completed match results, keyed by set fingerprint, change
// history and version.
package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.MatchStore using a file-per-key strategy.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory.
// The directory is created on the first Put.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Get retrieves the result stored for key.
func (s *Store) Get(key domain.MatchKey) (domain.MatchResult, bool, error) {
	filename := s.filename(key)
	//nolint:gosec // Path is constructed from the store root and a formatted key
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key.String())
	}

	var record domain.MatchRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key.String())
	}

	result, err := record.Result()
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key.String())
	}
	return result, true, nil
}

// Put stores the result for key.
func (s *Store) Put(key domain.MatchKey, result domain.MatchResult) error {
	data, err := json.MarshalIndent(domain.RecordOf(result), "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	if err := os.MkdirAll(s.root, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", s.root)
	}

	// Write to a sibling and rename so readers never see a partial record.
	tmp, err := os.CreateTemp(s.root, ".put-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), s.filename(key)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key.String())
	}
	return nil
}

func (s *Store) filename(key domain.MatchKey) string {
	return filepath.Join(s.root, fmt.Sprintf("%016x-%016x-%d.json", key.Fingerprint, key.History, key.Version))
}
