// Package controller implements the HTTP handlers on top of the
// collection managers.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobtrail-backend/internal/blob"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/store"
	"jobtrail-backend/internal/tracker"
	"jobtrail-backend/internal/utilities"
)

// Controller holds the dependencies shared by all handlers.
type Controller struct {
	DB       *database.DBInstance
	Stores   *store.Stores
	Registry *tracker.Registry
}

// New creates a Controller with its own session registry.
func New(db *database.DBInstance, s *store.Stores, blobs blob.Store) *Controller {
	return &Controller{
		DB:       db,
		Stores:   s,
		Registry: tracker.NewRegistry(s, blobs),
	}
}

// session resolves the caller's job session, writing the error response
// itself when it cannot. Callers bail out on ok == false.
func (ct *Controller) session(c *gin.Context) (*tracker.Session, uuid.UUID, bool) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return nil, uuid.Nil, false
	}

	sess, err := ct.Registry.Session(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return nil, uuid.Nil, false
	}
	return sess, user.ID, true
}

// pathID parses a uuid path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
