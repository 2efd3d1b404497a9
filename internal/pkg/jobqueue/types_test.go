package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateDocumentPayloadRoundtrip(t *testing.T) {
	in := TranslateDocumentJobPayload{JobID: 42, UserID: 7, BookID: 13}

	out, err := TranslateDocumentJobPayloadFromMap(in.ToMap())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestBookBackupPayloadRoundtrip(t *testing.T) {
	in := BookBackupJobPayload{BookID: 13, UserID: 7, FilePath: "/files/uploads/book.txt", FileSize: 1024}

	out, err := BookBackupJobPayloadFromMap(in.ToMap())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestJobLifecycleTransitions(t *testing.T) {
	job := &Job{
		ID:         "abc",
		Type:       JobTypeBookBackup,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("upload failed")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestTranslationJobsAreNotRetried(t *testing.T) {
	assert.Equal(t, 0, maxRetriesForType(JobTypeTranslateDocument))
	assert.Equal(t, DefaultMaxRetries, maxRetriesForType(JobTypeBookBackup))

	job := &Job{Status: JobStatusPending, MaxRetries: maxRetriesForType(JobTypeTranslateDocument)}
	job.MarkAsFailed("engine error")
	assert.False(t, job.IsRetryable())
}
