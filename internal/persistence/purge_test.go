package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/MimeLyc/caption-transcript/internal/transcript"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_SchedulePurge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	store.setClock(func() time.Time { return now })

	require.NoError(t, store.PutTranscript(ctx, "stale", transcript.Transcript{}, now.Add(-time.Minute)))
	require.NoError(t, store.PutTranscript(ctx, "fresh", transcript.Transcript{}, now.Add(time.Minute)))

	c := cron.New()
	id, err := store.SchedulePurge(c, "@hourly")
	require.NoError(t, err)

	entry := c.Entry(id)
	require.True(t, entry.Valid())
	entry.Job.Run()

	n, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "stale entry should already be purged")

	_, ok, err := store.GetTranscript(ctx, "fresh", now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteStore_SchedulePurge_BadExpression(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SchedulePurge(cron.New(), "not a schedule")
	assert.Error(t, err)
}
