package persistence

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/caption-transcript/pkg/log"
)

// SchedulePurge registers a cron job that drops expired transcripts.
func (s *SQLiteStore) SchedulePurge(c *cron.Cron, expr string) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		n, err := s.PurgeExpired(context.Background(), s.now())
		if err != nil {
			log.Error("Failed to purge transcript cache: %v", err)
			return
		}
		if n > 0 {
			log.Info("Purged %d expired transcripts", n)
		}
	})
}

func (s *SQLiteStore) setClock(now func() time.Time) {
	s.now = now
}
