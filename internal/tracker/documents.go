package tracker

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/blob"
	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/store"
)

// DocumentManager mediates document uploads: the blob write, the metadata
// row and the primary-flag bookkeeping.
type DocumentManager struct {
	owner uuid.UUID
	docs  *store.DocumentStore
	blobs blob.Store
}

// NewDocumentManager builds a document manager for owner.
func NewDocumentManager(s *store.Stores, blobs blob.Store, owner uuid.UUID) *DocumentManager {
	return &DocumentManager{owner: owner, docs: s.Documents, blobs: blobs}
}

// List fetches the metadata rows of one job, newest upload first.
func (m *DocumentManager) List(ctx context.Context, jobID uuid.UUID) ([]model.Document, error) {
	if m.owner == uuid.Nil {
		return nil, apperr.ErrNotAuthenticated
	}
	docs, err := m.docs.List(ctx, m.owner, jobID)
	if err != nil {
		return nil, &apperr.RemoteError{Op: "list documents", Err: err}
	}
	return docs, nil
}

// Upload stores the payload in the blob store, then records the metadata
// row. The first document of its type becomes primary. When the metadata
// insert fails after a successful upload the orphaned blob is removed
// best-effort and the error surfaces.
func (m *DocumentManager) Upload(ctx context.Context, jobID uuid.UUID, fileName string, data []byte, docType model.DocumentType) (*model.Document, error) {
	if m.owner == uuid.Nil {
		return nil, apperr.ErrNotAuthenticated
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, &apperr.ValidationError{Field: "file_name", Reason: "must not be empty"}
	}
	if docType == "" {
		docType = model.DocResume
	}
	if !docType.Valid() {
		return nil, &apperr.ValidationError{Field: "document_type", Reason: "unknown document type"}
	}

	existing, err := m.docs.CountByType(ctx, m.owner, jobID, docType)
	if err != nil {
		return nil, &apperr.RemoteError{Op: "upload document", Err: err}
	}

	path := blob.ObjectPath(m.owner, jobID, time.Now(), fileName)
	if err := m.blobs.Upload(ctx, path, data); err != nil {
		return nil, &apperr.RemoteError{Op: "upload document", Err: err}
	}

	doc := model.Document{
		JobID:     jobID,
		UserID:    m.owner,
		FileName:  fileName,
		FilePath:  path,
		FileSize:  int64(len(data)),
		DocType:   docType,
		IsPrimary: existing == 0,
	}
	if err := m.docs.Insert(ctx, &doc); err != nil {
		if rmErr := m.blobs.Remove(ctx, path); rmErr != nil {
			log.Printf("tracker: orphaned blob %s left behind: %v", path, rmErr)
		}
		return nil, &apperr.RemoteError{Op: "upload document", Err: err}
	}
	return &doc, nil
}

// Download fetches the binary payload of one document.
func (m *DocumentManager) Download(ctx context.Context, docID uuid.UUID) (*model.Document, []byte, error) {
	if m.owner == uuid.Nil {
		return nil, nil, apperr.ErrNotAuthenticated
	}
	doc, err := m.docs.Get(ctx, m.owner, docID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil, err
		}
		return nil, nil, &apperr.RemoteError{Op: "download document", Err: err}
	}
	data, err := m.blobs.Download(ctx, doc.FilePath)
	if err != nil {
		return nil, nil, &apperr.RemoteError{Op: "download document", Err: err}
	}
	return doc, data, nil
}

// Delete removes the blob and the metadata row together. A blob removal
// failure is tolerated as a partial failure: the row still goes away and
// the error is reported as non-blocking.
func (m *DocumentManager) Delete(ctx context.Context, docID uuid.UUID) error {
	if m.owner == uuid.Nil {
		return apperr.ErrNotAuthenticated
	}
	doc, err := m.docs.Get(ctx, m.owner, docID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return &apperr.RemoteError{Op: "delete document", Err: err}
	}

	blobErr := m.blobs.Remove(ctx, doc.FilePath)
	if blobErr != nil {
		log.Printf("tracker: failed to remove blob %s: %v", doc.FilePath, blobErr)
	}

	if err := m.docs.Delete(ctx, m.owner, docID); err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return &apperr.RemoteError{Op: "delete document", Err: err}
	}
	if blobErr != nil {
		return &apperr.PartialFailureError{Op: "delete document", Err: blobErr}
	}
	return nil
}

// CleanupJob removes every blob of a deleted job. Best-effort, the job row
// is already gone when this runs.
func (m *DocumentManager) CleanupJob(ctx context.Context, jobID uuid.UUID) {
	if err := m.blobs.RemovePrefix(ctx, blob.JobPrefix(m.owner, jobID)); err != nil {
		log.Printf("tracker: blob cleanup for job %s incomplete: %v", jobID, err)
	}
}
