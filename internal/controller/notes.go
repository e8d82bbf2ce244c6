package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/utilities"
)

// ListNotes returns the notes of one job, newest first.
func (ct *Controller) ListNotes(c *gin.Context) {
	sess, owner, ok := ct.session(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, found := sess.Jobs.Get(jobID); !found {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
		return
	}

	notes := ct.Registry.Notes(owner, jobID)
	if err := notes.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve notes: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, notes.Snapshot())
}

// CreateNote attaches a note to a job. Content is trimmed and must be
// non-empty; a missing category defaults to general.
func (ct *Controller) CreateNote(c *gin.Context) {
	sess, owner, ok := ct.session(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, found := sess.Jobs.Get(jobID); !found {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
		return
	}

	var body struct {
		Content  string             `json:"content"`
		Category model.NoteCategory `json:"category"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	note, err := ct.Registry.Notes(owner, jobID).Create(c.Request.Context(), body.Content, body.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// DeleteNote removes one note from a job.
func (ct *Controller) DeleteNote(c *gin.Context) {
	sess, owner, ok := ct.session(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(c, "noteId")
	if !ok {
		return
	}
	if _, found := sess.Jobs.Get(jobID); !found {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job not found"})
		return
	}

	if err := ct.Registry.Notes(owner, jobID).Delete(c.Request.Context(), noteID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Note deleted"})
}
