package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RunSweep exposes one reconciliation pass to whatever scheduler the
// deployment uses. The default ticker in main calls the same service method.
func RunSweep() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		report := sweeper.RunSweep(ctx)
		c.JSON(http.StatusOK, report)
	}
}

// SweepLoop drives the sweeper on a fixed interval until ctx is done.
func SweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(context.Background(), interval)
			sweeper.RunSweep(sweepCtx)
			cancel()
		}
	}
}
