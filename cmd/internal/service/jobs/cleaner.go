package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

type DeadConnectionDropper interface {
	DropDead(ctx context.Context) int
}

type ConnectionCleaner struct {
	dropper  DeadConnectionDropper
	interval time.Duration
}

func NewConnectionCleaner(dropper DeadConnectionDropper) *ConnectionCleaner {
	return &ConnectionCleaner{dropper: dropper, interval: time.Minute}
}

// Start blocks until ctx is cancelled.
func (c *ConnectionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info("Connection cleaner started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ConnectionCleaner) cleanup(ctx context.Context) {
	if n := c.dropper.DropDead(ctx); n > 0 {
		log.Infof("Cleaner: dropped %d dead connections", n)
	}
}
