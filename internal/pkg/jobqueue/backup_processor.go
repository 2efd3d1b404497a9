package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/litera-app/litera/app/repository"
	"github.com/litera-app/litera/internal/pkg/s3backup"
)

// BackupProcessor copies uploaded books to S3 after intake. Backups are
// best-effort durability; translation never depends on them.
type BackupProcessor struct {
	books  repository.BookRepository
	config *s3backup.Config
	client *s3backup.Client
}

// NewBackupProcessor creates a backup processor. Returns nil (and no error)
// when S3 backup is disabled so callers can skip wiring it.
func NewBackupProcessor(books repository.BookRepository) (*BackupProcessor, error) {
	config, err := s3backup.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !config.IsEnabled() {
		return nil, nil
	}

	client, err := s3backup.NewClient(config)
	if err != nil {
		return nil, err
	}

	return &BackupProcessor{
		books:  books,
		config: config,
		client: client,
	}, nil
}

// processBookBackupJob uploads a stored book to S3
func (q *Queue) processBookBackupJob(ctx context.Context, job *Job) error {
	payload, err := BookBackupJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid backup payload: %w", err)
	}

	if q.backupProcessor == nil {
		return fmt.Errorf("no backup processor configured")
	}

	return q.backupProcessor.Backup(ctx, payload)
}

// Backup uploads one book to the configured bucket
func (p *BackupProcessor) Backup(ctx context.Context, payload *BookBackupJobPayload) error {
	book, err := p.books.GetByID(payload.BookID)
	if err != nil {
		return fmt.Errorf("book %d not found: %w", payload.BookID, err)
	}

	objectKey := p.config.ObjectKeyForBook(book.UserID, book.ID, book.StoragePath)
	result, err := p.client.UploadFile(ctx, book.StoragePath, objectKey)
	if err != nil {
		return fmt.Errorf("backup upload for book %d failed: %w", book.ID, err)
	}

	log.Infof("[S3Backup] Book %d backed up to s3://%s/%s (%d bytes)",
		book.ID, result.BucketName, result.ObjectKey, result.Size)
	return nil
}
