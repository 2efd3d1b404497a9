package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/litera-app/litera/app/models"
	"github.com/litera-app/litera/app/repository"
	"github.com/litera-app/litera/internal/pkg/extract"
	"github.com/litera-app/litera/internal/pkg/jobqueue"
	"github.com/litera-app/litera/internal/pkg/ledger"
	"github.com/litera-app/litera/internal/pkg/pricing"
)

var (
	// ErrUnsupportedFormat is returned for uploads outside the allow-list.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrBookNotFound is returned when a book does not exist or belongs to
	// another user.
	ErrBookNotFound = errors.New("book not found")
	// ErrJobNotFound is returned when a job does not exist or belongs to
	// another user.
	ErrJobNotFound = errors.New("translation job not found")
	// ErrResultNotReady is returned when a download is requested before the
	// job completed.
	ErrResultNotReady = errors.New("translation result not ready")
)

// allowedExtensions is the upload allow-list. Checked case-insensitively.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".epub": true,
	".txt":  true,
	".docx": true,
}

// Store abstracts the document storage used by the service.
type Store interface {
	SaveUpload(filename string, r io.Reader) (string, int64, error)
	SaveTranslation(filename string, r io.Reader) (string, int64, error)
	Open(path string) (io.ReadCloser, error)
}

// Enqueuer abstracts the Redis job queue for the service.
type Enqueuer interface {
	EnqueueJob(jobType jobqueue.JobType, payload map[string]interface{}) (*jobqueue.Job, error)
}

// Engine produces the translated document for a stored book.
type Engine interface {
	Translate(ctx context.Context, sourcePath, sourceLanguage, targetLanguage string) (io.ReadCloser, error)
}

// Service owns the intake and job lifecycle: uploads, cost estimation,
// job creation with the atomic debit, and the worker-side run path.
type Service struct {
	books     repository.BookRepository
	jobs      repository.JobRepository
	ledger    *ledger.Service
	store     Store
	extractor extract.Extractor
	queue     Enqueuer
	engine    Engine
}

// NewService wires the translation service from its dependencies.
func NewService(
	books repository.BookRepository,
	jobs repository.JobRepository,
	ldg *ledger.Service,
	store Store,
	extractor extract.Extractor,
	queue Enqueuer,
	engine Engine,
) *Service {
	return &Service{
		books:     books,
		jobs:      jobs,
		ledger:    ldg,
		store:     store,
		extractor: extractor,
		queue:     queue,
		engine:    engine,
	}
}

// UploadBook validates, stores and records an uploaded document. Extraction
// failures degrade to zero counts; the upload itself still succeeds. A backup
// job is enqueued best-effort when a queue is wired.
func (s *Service) UploadBook(userID uint, filename string, r io.Reader, sourceLanguage string) (*models.Book, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedFormat
	}

	// Stored name never derives from client input beyond the extension.
	storedName := fmt.Sprintf("user_%d_%s%s", userID, uuid.New().String(), ext)
	path, size, err := s.store.SaveUpload(storedName, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	counts := extract.CountOrZero(s.extractor, path)

	if sourceLanguage == "" {
		sourceLanguage = "auto"
	}

	book := &models.Book{
		UserID:           userID,
		OriginalFilename: filepath.Base(filename),
		StoragePath:      path,
		FileSize:         size,
		PageCount:        counts.Pages,
		CharCount:        counts.Chars,
		SourceLanguage:   sourceLanguage,
	}
	if err := s.books.Create(book); err != nil {
		return nil, fmt.Errorf("failed to record book: %w", err)
	}

	s.enqueueBackup(book)

	log.Infof("[Translation] User %d uploaded book %d (%s, %d pages, %d chars)",
		userID, book.ID, book.OriginalFilename, book.PageCount, book.CharCount)
	return book, nil
}

func (s *Service) enqueueBackup(book *models.Book) {
	if s.queue == nil {
		return
	}
	payload := jobqueue.BookBackupJobPayload{
		BookID:   book.ID,
		UserID:   book.UserID,
		FilePath: book.StoragePath,
		FileSize: book.FileSize,
	}
	if _, err := s.queue.EnqueueJob(jobqueue.JobTypeBookBackup, payload.ToMap()); err != nil {
		log.Warnf("[Translation] Failed to enqueue backup for book %d: %v", book.ID, err)
	}
}

// CalculateCost estimates the translation cost for one of the user's books
// under the given pricing model.
func (s *Service) CalculateCost(userID, bookID uint, modelType int) (decimal.Decimal, error) {
	book, err := s.userBook(userID, bookID)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.Cost(modelType, book.PageCount, book.CharCount)
}

// Start debits the estimated cost and creates a pending translation job.
// The debit happens before the job row exists, so a job is only ever created
// against funds already taken. If the enqueue fails the debit is reversed and
// the job is marked failed.
func (s *Service) Start(userID, bookID uint, targetLanguage string, modelType int) (*models.TranslationJob, error) {
	book, err := s.userBook(userID, bookID)
	if err != nil {
		return nil, err
	}

	cost, err := pricing.Cost(modelType, book.PageCount, book.CharCount)
	if err != nil {
		return nil, err
	}

	if cost.IsPositive() {
		if _, err := s.ledger.Debit(userID, cost); err != nil {
			return nil, err
		}
	}

	job := &models.TranslationJob{
		UserID:         userID,
		BookID:         book.ID,
		TargetLanguage: targetLanguage,
		ModelType:      modelType,
		Status:         models.JobStatusPending,
		EstimatedCost:  cost,
	}
	if err := s.jobs.Create(job); err != nil {
		s.refund(userID, cost)
		return nil, fmt.Errorf("failed to create translation job: %w", err)
	}

	payload := jobqueue.TranslateDocumentJobPayload{JobID: job.ID, UserID: userID, BookID: book.ID}
	if _, err := s.queue.EnqueueJob(jobqueue.JobTypeTranslateDocument, payload.ToMap()); err != nil {
		s.refund(userID, cost)
		job.Status = models.JobStatusFailed
		job.FailureReason = "failed to enqueue translation"
		if uerr := s.jobs.Update(job); uerr != nil {
			log.Errorf("[Translation] Failed to mark job %d failed after enqueue error: %v", job.ID, uerr)
		}
		return nil, fmt.Errorf("failed to enqueue translation job: %w", err)
	}

	log.Infof("[Translation] Job %d created for user %d (book %d, cost %s)",
		job.ID, userID, book.ID, cost.StringFixed(2))
	return job, nil
}

// Books returns the user's uploaded documents, newest first.
func (s *Service) Books(userID uint) ([]models.Book, error) {
	return s.books.GetByUserID(userID)
}

// JobView is a job joined with its book for API listings.
type JobView struct {
	models.TranslationJob
	BookFilename    string `json:"book_filename"`
	ResultAvailable bool   `json:"result_available"`
}

// List returns the user's translation jobs, newest first, with the book
// filename and result availability resolved.
func (s *Service) List(userID uint) ([]JobView, error) {
	jobs, err := s.jobs.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	filenames := make(map[uint]string)
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		name, ok := filenames[job.BookID]
		if !ok {
			if book, berr := s.books.GetByID(job.BookID); berr == nil {
				name = book.OriginalFilename
			}
			filenames[job.BookID] = name
		}
		views = append(views, JobView{
			TranslationJob:  job,
			BookFilename:    name,
			ResultAvailable: job.ResultAvailable(),
		})
	}
	return views, nil
}

// Download opens the translated document of a completed job.
func (s *Service) Download(userID, jobID uint) (io.ReadCloser, string, error) {
	job, err := s.userJob(userID, jobID)
	if err != nil {
		return nil, "", err
	}
	if !job.ResultAvailable() {
		return nil, "", ErrResultNotReady
	}

	rc, err := s.store.Open(job.ResultPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open result for job %d: %w", job.ID, err)
	}
	return rc, filepath.Base(job.ResultPath), nil
}

// Run is the worker-side path: it claims the job, runs the engine and
// records the terminal state. Failures refund the estimated cost exactly
// once, because only the claiming runner ever reaches fail().
func (s *Service) Run(ctx context.Context, jobID uint) error {
	// Compare-and-swap pending -> processing: a redelivered queue entry for
	// a job some worker already owns loses here and must not touch the job
	// or the ledger again.
	acquired, err := s.jobs.MarkProcessing(jobID)
	if err != nil {
		return fmt.Errorf("failed to mark job %d processing: %w", jobID, err)
	}
	if !acquired {
		log.Warnf("[Translation] Job %d is not pending, skipping", jobID)
		return nil
	}

	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		return fmt.Errorf("job %d not found: %w", jobID, err)
	}

	book, err := s.books.GetByID(job.BookID)
	if err != nil {
		return s.fail(job, fmt.Errorf("book %d not found: %w", job.BookID, err))
	}

	result, err := s.engine.Translate(ctx, book.StoragePath, book.SourceLanguage, job.TargetLanguage)
	if err != nil {
		return s.fail(job, fmt.Errorf("translation engine: %w", err))
	}
	defer result.Close()

	resultName := fmt.Sprintf("job_%d_%s_%s", job.ID, job.TargetLanguage, book.OriginalFilename)
	resultPath, _, err := s.store.SaveTranslation(resultName, result)
	if err != nil {
		return s.fail(job, fmt.Errorf("failed to store result: %w", err))
	}

	now := time.Now()
	actual := job.EstimatedCost
	job.Status = models.JobStatusCompleted
	job.ActualCost = &actual
	job.ResultPath = resultPath
	job.CompletedAt = &now
	if err := s.jobs.Update(job); err != nil {
		return fmt.Errorf("failed to mark job %d completed: %w", job.ID, err)
	}

	log.Infof("[Translation] Job %d completed (result %s)", job.ID, resultPath)
	return nil
}

// fail records the terminal failed state and refunds the debit taken when
// the job was created.
func (s *Service) fail(job *models.TranslationJob, cause error) error {
	log.Errorf("[Translation] Job %d failed: %v", job.ID, cause)

	now := time.Now()
	job.Status = models.JobStatusFailed
	job.FailureReason = cause.Error()
	job.CompletedAt = &now
	if err := s.jobs.Update(job); err != nil {
		log.Errorf("[Translation] Failed to mark job %d failed: %v", job.ID, err)
	}

	s.refund(job.UserID, job.EstimatedCost)
	return cause
}

func (s *Service) refund(userID uint, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	if _, err := s.ledger.Credit(userID, amount); err != nil {
		log.Errorf("[Translation] Refund of %s for user %d failed: %v", amount.StringFixed(2), userID, err)
	}
}

func (s *Service) userBook(userID, bookID uint) (*models.Book, error) {
	book, err := s.books.GetByID(bookID)
	if err != nil || book.UserID != userID {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (s *Service) userJob(userID, jobID uint) (*models.TranslationJob, error) {
	job, err := s.jobs.GetByID(jobID)
	if err != nil || job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}
