package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/tracker"
	"jobtrail-backend/internal/utilities"
)

// ListJobs returns the caller's jobs, newest first.
func (ct *Controller) ListJobs(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sess.Jobs.Snapshot())
}

// CreateJob adds a job to the caller's collection. A job created without an
// explicit status starts as saved.
func (ct *Controller) CreateJob(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}

	var in tracker.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	job, err := sess.Jobs.Create(c.Request.Context(), in)
	if err != nil {
		if apperr.IsPartialFailure(err) {
			c.JSON(http.StatusCreated, gin.H{"job": job, "warning": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetJob returns a single job from the cached collection.
func (ct *Controller) GetJob(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	job, found := sess.Jobs.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateJob patches editable job fields. Status is rejected here; it has
// its own endpoint.
func (ct *Controller) UpdateJob(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	patch := map[string]interface{}{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	if len(patch) == 0 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Empty patch"})
		return
	}

	job, err := sess.Jobs.UpdateFields(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ChangeJobStatus moves a job through the status lifecycle.
func (ct *Controller) ChangeJobStatus(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Status model.JobStatus `json:"status" binding:"required"`
		Reason *string         `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Status must be provided"})
		return
	}

	job, err := sess.Jobs.ChangeStatus(c.Request.Context(), id, body.Status, body.Reason)
	if err != nil {
		if apperr.IsPartialFailure(err) {
			c.JSON(http.StatusOK, gin.H{"job": job, "warning": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob removes a job together with its notes, history and documents.
func (ct *Controller) DeleteJob(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := sess.Jobs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	// stored files of the job are cleaned up after the rows are gone
	sess.Documents.CleanupJob(c.Request.Context(), id)

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job deleted"})
}

// GetJobHistory returns the append-only status trail, newest first.
func (ct *Controller) GetJobHistory(c *gin.Context) {
	sess, owner, ok := ct.session(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, found := sess.Jobs.Get(id); !found {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
		return
	}

	entries, err := ct.Stores.History.List(c.Request.Context(), owner, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve history: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, entries)
}
