package cas

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string
	// InMemory keeps the database in memory only.
	InMemory bool
	// SyncWrites fsyncs every write.
	SyncWrites bool
	// Logger receives badger's internal warnings and errors. Nil silences them.
	Logger ports.Logger
}

// DefaultBadgerConfig returns a durable configuration rooted at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryBadgerConfig returns a configuration that keeps results for the process lifetime only.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts ports.Logger to badger.Logger.
type badgerLogger struct {
	logger ports.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(zerr.New(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(string, ...any) {}

func (l *badgerLogger) Debugf(string, ...any) {}

// BadgerStore implements ports.MatchStore on a badger key-value database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens or creates the database described by cfg.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, zerr.Wrap(domain.ErrStoreWriteFailed, "path is required for a persistent store")
		}
		if err := os.MkdirAll(cfg.Path, domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open badger store"), "path", cfg.Path)
	}
	return &BadgerStore{db: db}, nil
}

// Get retrieves the result stored for key.
func (s *BadgerStore) Get(key domain.MatchKey) (domain.MatchResult, bool, error) {
	var record domain.MatchRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &record); err != nil {
				return zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
			}
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key.String())
	}

	result, err := record.Result()
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key.String())
	}
	return result, true, nil
}

// Put stores the result for key.
func (s *BadgerStore) Put(key domain.MatchKey, result domain.MatchResult) error {
	data, err := json.Marshal(domain.RecordOf(result))
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(key), data)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key.String())
	}
	return nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// encodeKey lays out fingerprint, history and version, big-endian, so keys of one set and
// history sort by version.
func encodeKey(key domain.MatchKey) []byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[:8], key.Fingerprint)
	binary.BigEndian.PutUint64(buf[8:16], key.History)
	binary.BigEndian.PutUint64(buf[16:], uint64(key.Version))
	return buf
}
