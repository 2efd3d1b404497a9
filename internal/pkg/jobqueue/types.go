package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeTranslateDocument JobType = "translate_document"
	JobTypeBookBackup        JobType = "book_backup"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// TranslateDocumentJobPayload contains the payload for translation jobs.
// The job ID refers to the translation_jobs table, which carries the rest
// of the state (book, languages, cost).
type TranslateDocumentJobPayload struct {
	JobID  uint `json:"job_id"`
	UserID uint `json:"user_id"`
	BookID uint `json:"book_id"`
}

// ToMap converts the payload to a map for storage
func (p TranslateDocumentJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"job_id":  p.JobID,
		"user_id": p.UserID,
		"book_id": p.BookID,
	}
}

// FromMap creates a payload from a map
func TranslateDocumentJobPayloadFromMap(data map[string]interface{}) (*TranslateDocumentJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload TranslateDocumentJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// BookBackupJobPayload contains the payload for S3 book backup jobs
type BookBackupJobPayload struct {
	BookID   uint   `json:"book_id"`
	UserID   uint   `json:"user_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// ToMap converts the payload to a map for storage
func (p BookBackupJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"book_id":   p.BookID,
		"user_id":   p.UserID,
		"file_path": p.FilePath,
		"file_size": p.FileSize,
	}
}

// FromMap creates a payload from a map
func BookBackupJobPayloadFromMap(data map[string]interface{}) (*BookBackupJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload BookBackupJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
