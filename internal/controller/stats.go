package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail-backend/internal/stats"
)

// GetStats computes the caller's application statistics from the cached
// collection.
func (ct *Controller) GetStats(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, stats.Compute(sess.Jobs.Snapshot()))
}
