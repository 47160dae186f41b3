// Package changelog implements the delta source over an in-memory change history.
package changelog

import (
	"context"
	"encoding/binary"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

type historyKey struct {
	domain domain.DependencyDomain
	key    domain.InternedString
}

// Log is an append-only change history. Changes above the horizon are recorded
// but stay invisible until Advance seals them.
type Log struct {
	mu      sync.RWMutex
	history map[historyKey][]domain.Version
	horizon domain.Version
	latest  domain.Version
	digest  *xxhash.Digest
}

// New creates an empty Log with horizon 0.
func New() *Log {
	return &Log{
		history: make(map[historyKey][]domain.Version),
		digest:  xxhash.New(),
	}
}

// Record appends changes. Each change must be newer than the horizon and no
// older than the previously recorded change. A rejected batch leaves the log unchanged.
func (l *Log) Record(changes ...domain.Change) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	latest := l.latest
	for _, c := range changes {
		if c.Version <= l.horizon || c.Version < latest {
			return zerr.With(
				zerr.With(zerr.Wrap(domain.ErrNonMonotonicVersion, "failed to record change"),
					"version", c.Version.String()),
				"horizon", l.horizon.String(),
			)
		}
		latest = c.Version
	}

	for _, c := range changes {
		l.hashChange(c)
		for _, key := range c.Keys {
			hk := historyKey{domain: c.Domain, key: key}
			versions := l.history[hk]
			if n := len(versions); n > 0 && versions[n-1] == c.Version {
				continue
			}
			l.history[hk] = append(versions, c.Version)
		}
		l.latest = c.Version
	}
	return nil
}

func (l *Log) hashChange(c domain.Change) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(c.Version))
	_, _ = l.digest.Write(buf[:])
	_, _ = l.digest.WriteString(c.Domain.String())
	for _, key := range c.Keys {
		_, _ = l.digest.WriteString("\x00")
		_, _ = l.digest.WriteString(key.String())
	}
	_, _ = l.digest.WriteString("\x01")
}

// Advance seals every version up to v. Sealed versions can no longer change.
func (l *Log) Advance(v domain.Version) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v < l.horizon {
		return zerr.With(
			zerr.With(zerr.Wrap(domain.ErrNonMonotonicVersion, "failed to advance horizon"),
				"version", v.String()),
			"horizon", l.horizon.String(),
		)
	}
	l.horizon = v
	if l.latest < v {
		l.latest = v
	}
	return nil
}

// Horizon returns the newest sealed version.
func (l *Log) Horizon() domain.Version {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.horizon
}

// History identifies the recorded changes together with the horizon. Logs
// holding the same changes sealed at the same horizon share an identity.
func (l *Log) History() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], l.digest.Sum64())
	binary.BigEndian.PutUint64(buf[8:], uint64(l.horizon))
	return xxhash.Sum64(buf[:])
}

// ChangedAt returns the earliest sealed change to key in d at or after since.
func (l *Log) ChangedAt(
	ctx context.Context,
	d domain.DependencyDomain,
	key domain.InternedString,
	since domain.Version,
) (domain.Version, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	versions := l.history[historyKey{domain: d, key: key}]
	idx, _ := slices.BinarySearch(versions, since)
	if idx == len(versions) || versions[idx] > l.horizon {
		return 0, false, nil
	}
	return versions[idx], true, nil
}

// Load records every change of depot and seals its horizon.
func (l *Log) Load(depot *domain.Depot) error {
	if err := l.Record(depot.Changes...); err != nil {
		return zerr.Wrap(err, "failed to load depot changes")
	}
	return l.Advance(depot.Horizon)
}
