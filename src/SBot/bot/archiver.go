package bot

import (
	"context"
	"log"
	"time"
)

const archiveInterval = 24 * time.Hour

// runArchiver sweeps stale suggestions into the archive once a day. The
// first sweep runs shortly after startup so restarts do not postpone it.
func (b *Bot) runArchiver(ctx context.Context) {
	timer := time.NewTimer(time.Minute)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			n, err := b.engine.Archive(ctx)
			if err != nil {
				log.Printf("archiver: %v", err)
			} else if n > 0 {
				log.Printf("archiver: archived %d suggestion(s)", n)
			}
			timer.Reset(archiveInterval)
		}
	}
}
