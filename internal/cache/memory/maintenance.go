package memory

import (
	"context"
	"math"
	"time"

	"github.com/davidbz/searchmesh/internal/observability"
)

const (
	lowHitRate   = 0.3
	highHitRate  = 0.8
	highFill     = 0.9
	lowFill      = 0.5
	growFactor   = 1.2
	shrinkFactor = 0.9
)

// MaintenanceReport describes what one maintenance pass did.
type MaintenanceReport struct {
	Evaluated     bool          `json:"evaluated"`
	WindowHitRate float64       `json:"window_hit_rate"`
	Fill          float64       `json:"fill"`
	MaxEntries    int           `json:"max_entries"`
	BaseTTL       time.Duration `json:"base_ttl"`
	Expired       int           `json:"expired"`
	Snapshotted   bool          `json:"snapshotted"`
}

// Start launches the background maintenance loop. It is a no-op if already running.
func (c *Cache[V]) Start(ctx context.Context) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.cfg.MaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				c.RunMaintenance(loopCtx)
			}
		}
	}()

	observability.FromContext(ctx).Info("cache maintenance started",
		observability.String("cache", c.name),
		observability.Duration("interval", c.cfg.MaintenanceInterval),
	)
}

// Close stops the maintenance loop and writes a final snapshot when configured.
func (c *Cache[V]) Close(ctx context.Context) error {
	c.lifecycleMu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if c.cfg.SnapshotPath == "" {
		return nil
	}
	return c.Save(c.cfg.SnapshotPath)
}

// RunMaintenance adapts capacity and TTL to the hit rate observed since the previous
// run, sweeps expired entries and snapshots the cache when a path is configured.
func (c *Cache[V]) RunMaintenance(ctx context.Context) MaintenanceReport {
	logger := observability.FromContext(ctx)

	c.mu.Lock()
	report := c.adaptLocked()
	report.Expired = c.sweepExpiredLocked(c.now())
	c.expirations += int64(report.Expired)
	c.recordEviction("expired", report.Expired)
	c.recordUsage()
	c.mu.Unlock()

	if c.cfg.SnapshotPath != "" {
		if err := c.Save(c.cfg.SnapshotPath); err != nil {
			logger.Warn("cache snapshot failed",
				observability.String("cache", c.name),
				observability.Error(err),
			)
		} else {
			report.Snapshotted = true
		}
	}

	if c.events != nil && report.Evaluated {
		c.events.Publish(ctx, "cache.maintenance", map[string]interface{}{
			"cache":           c.name,
			"window_hit_rate": report.WindowHitRate,
			"fill":            report.Fill,
			"max_entries":     report.MaxEntries,
			"base_ttl":        report.BaseTTL.String(),
			"expired":         report.Expired,
		})
	}

	logger.Debug("cache maintenance completed",
		observability.String("cache", c.name),
		observability.Bool("evaluated", report.Evaluated),
		observability.Int("expired", report.Expired),
	)

	return report
}

// adaptLocked resizes maxEntries and the base TTL from the window hit rate.
// Windows smaller than MinSamples carry over to the next run.
func (c *Cache[V]) adaptLocked() MaintenanceReport {
	report := MaintenanceReport{
		MaxEntries: c.maxEntries,
		BaseTTL:    c.baseTTL,
		Fill:       float64(c.count) / float64(c.maxEntries),
	}

	total := c.windowHits + c.windowMisses
	if total < int64(c.cfg.MinSamples) {
		return report
	}

	hitRate := float64(c.windowHits) / float64(total)
	c.windowHits, c.windowMisses = 0, 0

	report.Evaluated = true
	report.WindowHitRate = hitRate

	switch {
	case hitRate < lowHitRate:
		if report.Fill > highFill {
			c.maxEntries = min(int(math.Ceil(float64(c.maxEntries)*growFactor)), c.cfg.MaxEntriesCap)
		}
		c.baseTTL = min(time.Duration(float64(c.baseTTL)*growFactor), c.cfg.MaxTTL)
	case hitRate > highHitRate:
		if report.Fill < lowFill {
			c.maxEntries = max(int(math.Floor(float64(c.maxEntries)*shrinkFactor)), c.cfg.MinEntries)
		}
		c.baseTTL = max(time.Duration(float64(c.baseTTL)*shrinkFactor), c.cfg.MinTTL)
	}

	report.MaxEntries = c.maxEntries
	report.BaseTTL = c.baseTTL
	return report
}
