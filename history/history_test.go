package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"security-assistant/mail"
	"security-assistant/vetting"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func verdict(domain string, i int) vetting.DomainVerdict {
	return vetting.DomainVerdict{
		Domain:    domain,
		Status:    vetting.StatusSafe,
		Score:     100,
		Reasons:   []string{vetting.ReasonHTTPS},
		Timestamp: base.Add(time.Duration(i) * time.Second),
	}
}

func openStores(t *testing.T, limit int) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(limit),
		"sqlite": sq,
	}
}

func TestStore_DomainsNewestFirstAndCapped(t *testing.T) {
	for name, s := range openStores(t, 5) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := range 8 {
				require.NoError(t, s.AddDomain(ctx, verdict(fmt.Sprintf("site%d.com", i), i)))
			}

			got, err := s.Domains(ctx, 0)
			require.NoError(t, err)
			require.Len(t, got, 5)
			assert.Equal(t, "site7.com", got[0].Domain)
			assert.Equal(t, "site3.com", got[4].Domain)
			assert.NotEmpty(t, got[0].ID)
			assert.NotEqual(t, got[0].ID, got[1].ID)

			got, err = s.Domains(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, got, 2)
		})
	}
}

func TestStore_DomainRoundTrip(t *testing.T) {
	for name, s := range openStores(t, DefaultLimit) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			v := vetting.DomainVerdict{
				Domain:    "phishingsite.com",
				Status:    vetting.StatusUnsafe,
				Score:     0,
				Reasons:   []string{vetting.ReasonKnownMalicious},
				Timestamp: base,
			}
			require.NoError(t, s.AddDomain(ctx, v))

			got, err := s.Domains(ctx, 1)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, v.Domain, got[0].Domain)
			assert.Equal(t, v.Status, got[0].Status)
			assert.Equal(t, v.Reasons, got[0].Reasons)
			assert.True(t, v.Timestamp.Equal(got[0].Timestamp))
			assert.True(t, got[0].Blocked())
		})
	}
}

func TestStore_LatestDomain(t *testing.T) {
	for name, s := range openStores(t, DefaultLimit) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := verdict("example.com", 0)
			second := verdict("example.com", 1)
			second.Status = vetting.StatusSuspicious
			second.Score = 50
			require.NoError(t, s.AddDomain(ctx, first))
			require.NoError(t, s.AddDomain(ctx, verdict("other.com", 2)))
			require.NoError(t, s.AddDomain(ctx, second))

			got, err := s.LatestDomain(ctx, "Example.COM")
			require.NoError(t, err)
			assert.Equal(t, 50, got.Score)
			assert.Equal(t, vetting.StatusSuspicious, got.Status)

			_, err = s.LatestDomain(ctx, "missing.com")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_EmailsNewestFirstAndCapped(t *testing.T) {
	for name, s := range openStores(t, 3) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := range 4 {
				require.NoError(t, s.AddEmail(ctx, mail.Result{
					MessageID: fmt.Sprintf("m%d", i),
					Subject:   fmt.Sprintf("subject %d", i),
					IsSpam:    i%2 == 1,
					Matches:   []string{"free"},
					Timestamp: base.Add(time.Duration(i) * time.Second),
				}))
			}

			got, err := s.Emails(ctx, 10)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "m3", got[0].MessageID)
			assert.True(t, got[0].IsSpam)
			assert.Equal(t, []string{"free"}, got[0].Matches)
			assert.Equal(t, "m1", got[2].MessageID)
		})
	}
}

func TestStore_EmptyListings(t *testing.T) {
	for name, s := range openStores(t, DefaultLimit) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			domains, err := s.Domains(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, domains)

			emails, err := s.Emails(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, emails)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := OpenSQLite(path, DefaultLimit)
	require.NoError(t, err)
	require.NoError(t, s.AddDomain(context.Background(), verdict("kept.com", 0)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, DefaultLimit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.LatestDomain(context.Background(), "kept.com")
	require.NoError(t, err)
	assert.Equal(t, "kept.com", got.Domain)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("", DefaultLimit)
	assert.Error(t, err)
}

func TestMemoryStore_ListingIsACopy(t *testing.T) {
	s := NewMemoryStore(DefaultLimit)
	ctx := context.Background()
	require.NoError(t, s.AddDomain(ctx, verdict("a.com", 0)))

	got, err := s.Domains(ctx, 0)
	require.NoError(t, err)
	got[0].Domain = "mutated.com"

	again, err := s.Domains(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "a.com", again[0].Domain)
}
