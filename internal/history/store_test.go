package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	first := &Run{
		StartedAt:   base,
		FinishedAt:  base.Add(4 * time.Minute),
		Username:    "alice",
		Region:      "all",
		Outcome:     OutcomeExported,
		FinalState:  "closed",
		ReportPath:  "tags_services_account/alice_all_20250303.csv",
		Records:     42,
		FullyTagged: 7,
	}
	require.NoError(t, s.Record(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &Run{
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Minute),
		Username:   "alice",
		Region:     "us-west-2",
		Outcome:    OutcomeAborted,
		FinalState: "aborted",
		Error:      "results_loading: wait for export: context deadline exceeded",
	}
	require.NoError(t, s.Record(ctx, second))

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, OutcomeAborted, runs[0].Outcome)
	assert.Equal(t, time.Minute, runs[0].Duration())

	got := runs[1]
	got.StartedAt = got.StartedAt.UTC()
	got.FinishedAt = got.FinishedAt.UTC()
	if diff := cmp.Diff(*first, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ListLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, &Run{
			StartedAt:  now.Add(time.Duration(i) * time.Second),
			FinishedAt: now.Add(time.Duration(i) * time.Second),
			Username:   "bob",
			Region:     "all",
			Outcome:    OutcomeExported,
			FinalState: "closed",
		}))
	}

	runs, err := s.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), &Run{
		StartedAt: time.Now(), FinishedAt: time.Now(),
		Username: "carol", Region: "all", Outcome: OutcomeExported, FinalState: "closed",
	}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "carol", runs[0].Username)
}
