package changelog_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/adapters/changelog"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var (
	_ ports.DeltaSource    = (*changelog.Log)(nil)
	_ ports.DeltaSource    = (*changelog.Coalescing)(nil)
	_ ports.ChangeRecorder = (*changelog.Log)(nil)
)

func change(v domain.Version, d domain.DependencyDomain, keys ...string) domain.Change {
	return domain.Change{Version: v, Domain: d, Keys: domain.NewInternedStrings(keys)}
}

func TestLog_ChangedAt(t *testing.T) {
	log := changelog.New()
	require.NoError(t, log.Record(
		change(2, domain.DomainSource, "a.go"),
		change(5, domain.DomainSource, "a.go", "b.go"),
		change(5, domain.DomainAnalysis, "a.go"),
		change(9, domain.DomainSource, "a.go"),
	))
	require.NoError(t, log.Advance(8))

	key := domain.NewInternedString("a.go")
	tests := []struct {
		name      string
		domain    domain.DependencyDomain
		key       domain.InternedString
		since     domain.Version
		wantFound bool
		want      domain.Version
	}{
		{"exact hit", domain.DomainSource, key, 2, true, 2},
		{"earliest after floor", domain.DomainSource, key, 3, true, 5},
		{"floor below first change", domain.DomainSource, key, 0, true, 2},
		{"unsealed change hidden", domain.DomainSource, key, 6, false, 0},
		{"domains are separate", domain.DomainAnalysis, key, 0, true, 5},
		{"unknown key", domain.DomainSource, domain.NewInternedString("c.go"), 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := log.ChangedAt(t.Context(), tt.domain, tt.key, tt.since)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}

	require.NoError(t, log.Advance(9))
	got, found, err := log.ChangedAt(t.Context(), domain.DomainSource, key, 6)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.Version(9), got)
}

func TestLog_Ordering(t *testing.T) {
	log := changelog.New()
	require.NoError(t, log.Record(change(3, domain.DomainSource, "a")))

	err := log.Record(change(2, domain.DomainSource, "a"))
	require.ErrorIs(t, err, domain.ErrNonMonotonicVersion)

	require.NoError(t, log.Advance(4))
	assert.Equal(t, domain.Version(4), log.Horizon())

	err = log.Record(change(4, domain.DomainSource, "a"))
	require.ErrorIs(t, err, domain.ErrNonMonotonicVersion)

	err = log.Advance(3)
	require.ErrorIs(t, err, domain.ErrNonMonotonicVersion)

	require.NoError(t, log.Record(change(5, domain.DomainSource, "a"), change(5, domain.DomainSource, "a")))
}

func TestLog_RejectedBatchLeavesLogUnchanged(t *testing.T) {
	log := changelog.New()
	require.NoError(t, log.Record(change(2, domain.DomainSource, "a")))
	before := log.History()

	err := log.Record(
		change(6, domain.DomainSource, "b"),
		change(4, domain.DomainSource, "a"),
	)
	require.ErrorIs(t, err, domain.ErrNonMonotonicVersion)
	assert.Equal(t, before, log.History())

	require.NoError(t, log.Advance(8))
	_, found, err := log.ChangedAt(t.Context(), domain.DomainSource, domain.NewInternedString("b"), 0)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, log.Record(change(9, domain.DomainSource, "b")))
}

func TestLog_RejectedBatchKeepsLatest(t *testing.T) {
	log := changelog.New()
	require.NoError(t, log.Record(change(2, domain.DomainSource, "a")))

	err := log.Record(change(7, domain.DomainSource, "a"), change(3, domain.DomainSource, "a"))
	require.ErrorIs(t, err, domain.ErrNonMonotonicVersion)

	require.NoError(t, log.Record(change(4, domain.DomainSource, "a")))
	require.NoError(t, log.Advance(5))
	v, found, err := log.ChangedAt(t.Context(), domain.DomainSource, domain.NewInternedString("a"), 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.Version(4), v)
}

func TestLog_History(t *testing.T) {
	build := func(t *testing.T, horizon domain.Version, changes ...domain.Change) uint64 {
		t.Helper()
		log := changelog.New()
		require.NoError(t, log.Record(changes...))
		require.NoError(t, log.Advance(horizon))
		return log.History()
	}

	edited := build(t, 10, change(3, domain.DomainSource, "src/main.go"))
	assert.Equal(t, edited, build(t, 10, change(3, domain.DomainSource, "src/main.go")))

	others := map[string]uint64{
		"no changes":    build(t, 10),
		"other version": build(t, 10, change(4, domain.DomainSource, "src/main.go")),
		"other domain":  build(t, 10, change(3, domain.DomainAnalysis, "src/main.go")),
		"other key":     build(t, 10, change(3, domain.DomainSource, "src/lib.go")),
		"split keys":    build(t, 10, change(3, domain.DomainSource, "src/main", ".go")),
		"other horizon": build(t, 11, change(3, domain.DomainSource, "src/main.go")),
	}
	for name, h := range others {
		assert.NotEqual(t, edited, h, name)
	}
}

func TestLog_Load(t *testing.T) {
	depot, err := domain.NewDepot(7, []domain.Change{
		change(1, domain.DomainSource, "main.go"),
		change(4, domain.DomainAnalysis, "typecheck"),
	}, nil)
	require.NoError(t, err)

	log := changelog.New()
	require.NoError(t, log.Load(depot))
	assert.Equal(t, domain.Version(7), log.Horizon())

	v, found, err := log.ChangedAt(t.Context(), domain.DomainAnalysis, domain.NewInternedString("typecheck"), 2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.Version(4), v)
}

func TestLog_ChangedAtCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, _, err := changelog.New().ChangedAt(ctx, domain.DomainSource, domain.NewInternedString("a"), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

type blockingSource struct {
	release chan struct{}
	calls   atomic.Int32
}

func (s *blockingSource) ChangedAt(
	ctx context.Context, _ domain.DependencyDomain, _ domain.InternedString, since domain.Version,
) (domain.Version, bool, error) {
	s.calls.Add(1)
	<-s.release
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	return since + 1, true, nil
}

func (s *blockingSource) Horizon() domain.Version { return 10 }

func (s *blockingSource) History() uint64 { return 0x42 }

func TestCoalescing_SharesConcurrentQueries(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		source := &blockingSource{release: make(chan struct{})}
		c := changelog.NewCoalescing(source)
		key := domain.NewInternedString("shared")

		const callers = 8
		var wg sync.WaitGroup
		results := make([]domain.Version, callers)
		for i := range callers {
			wg.Go(func() {
				v, found, err := c.ChangedAt(t.Context(), domain.DomainSource, key, 3)
				assert.NoError(t, err)
				assert.True(t, found)
				results[i] = v
			})
		}

		synctest.Wait()
		close(source.release)
		wg.Wait()

		assert.Equal(t, int32(1), source.calls.Load())
		for _, v := range results {
			assert.Equal(t, domain.Version(4), v)
		}
		assert.Equal(t, domain.Version(10), c.Horizon())
		assert.Equal(t, uint64(0x42), c.History())
	})
}

func TestCoalescing_CanceledLeaderDoesNotFailFollowers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		source := &blockingSource{release: make(chan struct{})}
		c := changelog.NewCoalescing(source)
		key := domain.NewInternedString("shared")

		leaderCtx, cancel := context.WithCancel(t.Context())
		var leaderErr error
		var wg sync.WaitGroup
		wg.Go(func() {
			_, _, leaderErr = c.ChangedAt(leaderCtx, domain.DomainSource, key, 3)
		})
		synctest.Wait()

		var (
			v         domain.Version
			found     bool
			followErr error
		)
		wg.Go(func() {
			v, found, followErr = c.ChangedAt(t.Context(), domain.DomainSource, key, 3)
		})
		synctest.Wait()

		cancel()
		close(source.release)
		wg.Wait()

		require.NoError(t, followErr)
		assert.True(t, found)
		assert.Equal(t, domain.Version(4), v)
		require.ErrorIs(t, leaderErr, context.Canceled)
		assert.Equal(t, int32(1), source.calls.Load())
	})
}

func TestCoalescing_PropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockDeltaSource(ctrl)
	boom := errors.New("offline")
	key := domain.NewInternedString("a")

	source.EXPECT().ChangedAt(gomock.Any(), domain.DomainAnalysis, key, domain.Version(2)).Return(domain.Version(0), false, boom)
	source.EXPECT().ChangedAt(gomock.Any(), domain.DomainAnalysis, key, domain.Version(2)).Return(domain.Version(6), true, nil)

	c := changelog.NewCoalescing(source)
	_, _, err := c.ChangedAt(t.Context(), domain.DomainAnalysis, key, 2)
	require.ErrorIs(t, err, boom)

	v, found, err := c.ChangedAt(t.Context(), domain.DomainAnalysis, key, 2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.Version(6), v)
}
