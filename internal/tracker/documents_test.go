package tracker

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/blob"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
)

func newDocsFixture(t *testing.T) (*DocumentManager, *blob.MemoryStore, uuid.UUID) {
	t.Helper()
	s, _, _ := newTestStores(t)
	owner := database.TestUser1.ID

	jobs := newLoadedCollection(t, s, owner)
	job, err := jobs.Create(context.Background(), JobInput{CompanyName: "Acme", JobTitle: "Engineer"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	blobs := blob.NewMemoryStore()
	return NewDocumentManager(s, blobs, owner), blobs, job.ID
}

func TestDocumentUpload_firstOfTypeIsPrimary(t *testing.T) {
	m, blobs, jobID := newDocsFixture(t)
	ctx := context.Background()

	first, err := m.Upload(ctx, jobID, "resume_v1.pdf", []byte("pdf-bytes"), model.DocResume)
	assert.NoError(t, err)
	assert.True(t, first.IsPrimary)
	assert.Equal(t, int64(len("pdf-bytes")), first.FileSize)
	assert.True(t, blobs.Has(first.FilePath))

	second, err := m.Upload(ctx, jobID, "resume_v2.pdf", []byte("pdf-bytes-2"), model.DocResume)
	assert.NoError(t, err)
	assert.False(t, second.IsPrimary, "second upload of a type is not primary")

	// a different type starts its own primary
	cover, err := m.Upload(ctx, jobID, "cover.pdf", []byte("letter"), model.DocCoverLetter)
	assert.NoError(t, err)
	assert.True(t, cover.IsPrimary)
}

func TestDocumentUpload_pathConvention(t *testing.T) {
	m, _, jobID := newDocsFixture(t)

	doc, err := m.Upload(context.Background(), jobID, "offer.pdf", []byte("x"), model.DocOfferLetter)
	assert.NoError(t, err)

	parts := strings.Split(doc.FilePath, "/")
	if assert.Len(t, parts, 3) {
		assert.Equal(t, database.TestUser1.ID.String(), parts[0])
		assert.Equal(t, jobID.String(), parts[1])
		assert.True(t, strings.HasSuffix(parts[2], "_offer.pdf"))
	}
}

func TestDocumentUpload_blobFailureLeavesNoRow(t *testing.T) {
	m, blobs, jobID := newDocsFixture(t)
	blobs.FailUploads = true

	_, err := m.Upload(context.Background(), jobID, "resume.pdf", []byte("x"), model.DocResume)
	var re *apperr.RemoteError
	assert.ErrorAs(t, err, &re)

	docs, err := m.List(context.Background(), jobID)
	assert.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentDownload_roundTrip(t *testing.T) {
	m, _, jobID := newDocsFixture(t)
	payload := []byte("assessment answers")

	up, err := m.Upload(context.Background(), jobID, "task.md", payload, model.DocAssessment)
	assert.NoError(t, err)

	doc, data, err := m.Download(context.Background(), up.ID)
	assert.NoError(t, err)
	assert.Equal(t, "task.md", doc.FileName)
	assert.Equal(t, payload, data)
}

func TestDocumentDelete_removesRowAndBlob(t *testing.T) {
	m, blobs, jobID := newDocsFixture(t)

	doc, err := m.Upload(context.Background(), jobID, "resume.pdf", []byte("x"), model.DocResume)
	assert.NoError(t, err)

	assert.NoError(t, m.Delete(context.Background(), doc.ID))
	assert.False(t, blobs.Has(doc.FilePath))

	docs, err := m.List(context.Background(), jobID)
	assert.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentDelete_blobFailureIsPartial(t *testing.T) {
	m, blobs, jobID := newDocsFixture(t)

	doc, err := m.Upload(context.Background(), jobID, "resume.pdf", []byte("x"), model.DocResume)
	assert.NoError(t, err)

	blobs.FailRemoves = true
	err = m.Delete(context.Background(), doc.ID)
	assert.True(t, apperr.IsPartialFailure(err), "blob removal failure must not block the delete")

	// the metadata row is gone regardless
	docs, listErr := m.List(context.Background(), jobID)
	assert.NoError(t, listErr)
	assert.Empty(t, docs)
}

func TestDocumentCleanupJob_removesPrefix(t *testing.T) {
	m, blobs, jobID := newDocsFixture(t)

	_, err := m.Upload(context.Background(), jobID, "a.pdf", []byte("a"), model.DocResume)
	assert.NoError(t, err)
	_, err = m.Upload(context.Background(), jobID, "b.pdf", []byte("b"), model.DocFeedback)
	assert.NoError(t, err)
	assert.Equal(t, 2, blobs.Len())

	m.CleanupJob(context.Background(), jobID)
	assert.Equal(t, 0, blobs.Len())
}
