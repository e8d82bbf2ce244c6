package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail-backend/internal/utilities"
)

// Hello answers the root route.
func (ct *Controller) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Hello from JobTrail"})
}

// Health reports database connectivity statistics.
func (ct *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, ct.DB.Health())
}

// Logout disposes the caller's session, tearing down its cached
// collections and subscriptions. The access token itself simply expires.
func (ct *Controller) Logout(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	ct.Registry.Dispose(user.ID)
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Logged out"})
}
