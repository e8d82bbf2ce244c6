package controller

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/utilities"
)

// MaxDocumentBytes caps a single document upload.
const MaxDocumentBytes = 10 << 20

// ListDocuments returns the document metadata of one job.
func (ct *Controller) ListDocuments(c *gin.Context) {
	sess, _, ok := ct.session(c)
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

	docs, err := sess.Documents.List(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve documents: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, docs)
}

// UploadDocument stores a multipart file for a job. The first document of
// its type becomes the primary one.
func (ct *Controller) UploadDocument(c *gin.Context) {
	sess, _, ok := ct.session(c)
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

	rawFile, err := c.FormFile("file")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	docType := model.DocumentType(c.PostForm("document_type"))
	if docType == "" {
		docType = model.DocResume
	}
	if !docType.Valid() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown document type %q", docType),
		})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("controller: failed to close uploaded file: %v", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return
	}

	doc, err := sess.Documents.Upload(c.Request.Context(), jobID, rawFile.Filename, data, docType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// DownloadDocument streams the stored file back.
func (ct *Controller) DownloadDocument(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	doc, data, err := sess.Documents.Download(c.Request.Context(), docID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// DeleteDocument removes the metadata row and the stored file. A failed
// blob remove still deletes the row and surfaces as a warning.
func (ct *Controller) DeleteDocument(c *gin.Context) {
	sess, _, ok := ct.session(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	if err := sess.Documents.Delete(c.Request.Context(), docID); err != nil {
		if apperr.IsPartialFailure(err) {
			c.JSON(http.StatusOK, utilities.MessageResponse{
				Message: "Document deleted",
				Warning: err.Error(),
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Document deleted"})
}
