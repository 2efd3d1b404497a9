package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litera-app/litera/app/models"
	"github.com/litera-app/litera/app/repository"
	"github.com/litera-app/litera/internal/pkg/extract"
	"github.com/litera-app/litera/internal/pkg/jobqueue"
	"github.com/litera-app/litera/internal/pkg/ledger"
	"github.com/litera-app/litera/internal/pkg/pricing"
)

type memBookRepo struct {
	mu     sync.Mutex
	nextID uint
	books  map[uint]*models.Book
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{nextID: 1, books: map[uint]*models.Book{}}
}

func (r *memBookRepo) Create(book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book.ID = r.nextID
	r.nextID++
	cp := *book
	r.books[book.ID] = &cp
	return nil
}

func (r *memBookRepo) GetByID(id uint) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *book
	return &cp, nil
}

func (r *memBookRepo) GetByUserID(userID uint) ([]models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Book
	for _, b := range r.books {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type memJobRepo struct {
	mu     sync.Mutex
	nextID uint
	jobs   map[uint]*models.TranslationJob
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{nextID: 1, jobs: map[uint]*models.TranslationJob{}}
}

func (r *memJobRepo) Create(job *models.TranslationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = r.nextID
	r.nextID++
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) GetByID(id uint) (*models.TranslationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *job
	return &cp, nil
}

func (r *memJobRepo) GetByUserID(userID uint) ([]models.TranslationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TranslationJob
	for _, j := range r.jobs {
		if j.UserID == userID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *memJobRepo) MarkProcessing(id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return false, errors.New("record not found")
	}
	if job.Status != models.JobStatusPending {
		return false, nil
	}
	job.Status = models.JobStatusProcessing
	return true, nil
}

func (r *memJobRepo) Update(job *models.TranslationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return errors.New("record not found")
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

type memBalanceRepo struct {
	mu       sync.Mutex
	balances map[uint]decimal.Decimal
}

func newMemBalanceRepo() *memBalanceRepo {
	return &memBalanceRepo{balances: map[uint]decimal.Decimal{}}
}

func (r *memBalanceRepo) Create(balance *models.UserBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balance.UserID] = balance.Balance
	return nil
}

func (r *memBalanceRepo) GetByUserID(userID uint) (*models.UserBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bal, ok := r.balances[userID]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &models.UserBalance{UserID: userID, Balance: bal}, nil
}

func (r *memBalanceRepo) Credit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[userID] = r.balances[userID].Add(amount)
	return &models.UserBalance{UserID: userID, Balance: r.balances[userID]}, nil
}

func (r *memBalanceRepo) Debit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balances[userID].LessThan(amount) {
		return nil, repository.ErrInsufficientFunds
	}
	r.balances[userID] = r.balances[userID].Sub(amount)
	return &models.UserBalance{UserID: userID, Balance: r.balances[userID]}, nil
}

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (s *memStore) save(prefix, filename string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := prefix + "/" + filename
	s.files[path] = data
	return path, int64(len(data)), nil
}

func (s *memStore) SaveUpload(filename string, r io.Reader) (string, int64, error) {
	return s.save("uploads", filename, r)
}

func (s *memStore) SaveTranslation(filename string, r io.Reader) (string, int64, error) {
	return s.save("translations", filename, r)
}

func (s *memStore) Open(path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type stubExtractor struct {
	counts extract.Counts
	err    error
}

func (e stubExtractor) Extract(string) (extract.Counts, error) {
	return e.counts, e.err
}

type fakeEnqueuer struct {
	mu      sync.Mutex
	jobs    []jobqueue.JobType
	failOn  jobqueue.JobType
	failErr error
}

func (f *fakeEnqueuer) EnqueueJob(jobType jobqueue.JobType, payload map[string]interface{}) (*jobqueue.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if jobType == f.failOn && f.failErr != nil {
		return nil, f.failErr
	}
	f.jobs = append(f.jobs, jobType)
	return &jobqueue.Job{Type: jobType, Payload: payload}, nil
}

type stubEngine struct {
	output string
	err    error
}

func (e stubEngine) Translate(_ context.Context, _, _, _ string) (io.ReadCloser, error) {
	if e.err != nil {
		return nil, e.err
	}
	return io.NopCloser(strings.NewReader(e.output)), nil
}

type fixture struct {
	svc      *Service
	books    *memBookRepo
	jobs     *memJobRepo
	balances *memBalanceRepo
	store    *memStore
	queue    *fakeEnqueuer
}

func newFixture(engine Engine, extractor extract.Extractor) *fixture {
	f := &fixture{
		books:    newMemBookRepo(),
		jobs:     newMemJobRepo(),
		balances: newMemBalanceRepo(),
		store:    newMemStore(),
		queue:    &fakeEnqueuer{},
	}
	f.svc = NewService(f.books, f.jobs, ledger.NewService(f.balances), f.store, extractor, f.queue, engine)
	return f
}

func (f *fixture) fund(t *testing.T, userID uint, amount string) {
	t.Helper()
	f.balances.mu.Lock()
	defer f.balances.mu.Unlock()
	f.balances.balances[userID] = decimal.RequireFromString(amount)
}

func (f *fixture) balance(t *testing.T, userID uint) decimal.Decimal {
	t.Helper()
	f.balances.mu.Lock()
	defer f.balances.mu.Unlock()
	return f.balances.balances[userID]
}

func TestUploadBookRejectsUnsupportedFormat(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{})

	_, err := f.svc.UploadBook(1, "malware.exe", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = f.svc.UploadBook(1, "book.TXT", strings.NewReader("hello"), "")
	assert.NoError(t, err)
}

func TestUploadBookRecordsCountsAndEnqueuesBackup(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{counts: extract.Counts{Pages: 3, Chars: 5000}})

	book, err := f.svc.UploadBook(1, "book.txt", strings.NewReader("hello world"), "en")
	require.NoError(t, err)

	assert.Equal(t, 3, book.PageCount)
	assert.Equal(t, 5000, book.CharCount)
	assert.Equal(t, int64(11), book.FileSize)
	assert.Equal(t, "en", book.SourceLanguage)
	assert.Equal(t, []jobqueue.JobType{jobqueue.JobTypeBookBackup}, f.queue.jobs)
}

func TestUploadBookDegradesOnExtractionFailure(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{err: errors.New("corrupt file")})

	book, err := f.svc.UploadBook(1, "book.pdf", strings.NewReader("%PDF"), "")
	require.NoError(t, err)
	assert.Zero(t, book.PageCount)
	assert.Zero(t, book.CharCount)
	assert.Equal(t, "auto", book.SourceLanguage)
}

func TestListBooksIsScopedToUser(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{counts: extract.Counts{Pages: 1}})

	_, err := f.svc.UploadBook(1, "mine.txt", strings.NewReader("a"), "")
	require.NoError(t, err)
	_, err = f.svc.UploadBook(2, "theirs.txt", strings.NewReader("b"), "")
	require.NoError(t, err)

	books, err := f.svc.Books(1)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "mine.txt", books[0].OriginalFilename)
}

func TestCalculateCost(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{counts: extract.Counts{Pages: 10, Chars: 1860}})

	book, err := f.svc.UploadBook(1, "book.txt", strings.NewReader("text"), "")
	require.NoError(t, err)

	cost, err := f.svc.CalculateCost(1, book.ID, models.PricingModelPerPage)
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.RequireFromString("3.00")), "got %s", cost)

	_, err = f.svc.CalculateCost(1, book.ID, 99)
	assert.ErrorIs(t, err, pricing.ErrUnknownModel)

	_, err = f.svc.CalculateCost(2, book.ID, models.PricingModelPerPage)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestStartDebitsAndCreatesPendingJob(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{counts: extract.Counts{Pages: 10}})
	f.fund(t, 1, "5.00")

	book, err := f.svc.UploadBook(1, "book.txt", strings.NewReader("text"), "")
	require.NoError(t, err)

	job, err := f.svc.Start(1, book.ID, "de", models.PricingModelPerPage)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.True(t, job.EstimatedCost.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("2.00")), "got %s", f.balance(t, 1))
	assert.Contains(t, f.queue.jobs, jobqueue.JobTypeTranslateDocument)
}

func TestStartInsufficientFunds(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{counts: extract.Counts{Pages: 10}})
	f.fund(t, 1, "1.00")

	book, err := f.svc.UploadBook(1, "book.txt", strings.NewReader("text"), "")
	require.NoError(t, err)

	_, err = f.svc.Start(1, book.ID, "de", models.PricingModelPerPage)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// Balance untouched, no job row created.
	assert.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("1.00")))
	jobs, err := f.svc.List(1)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestStartRefundsWhenEnqueueFails(t *testing.T) {
	f := newFixture(stubEngine{}, stubExtractor{counts: extract.Counts{Pages: 10}})
	f.fund(t, 1, "5.00")
	f.queue.failOn = jobqueue.JobTypeTranslateDocument
	f.queue.failErr = errors.New("redis down")

	book, err := f.svc.UploadBook(1, "book.txt", strings.NewReader("text"), "")
	require.NoError(t, err)

	_, err = f.svc.Start(1, book.ID, "de", models.PricingModelPerPage)
	require.Error(t, err)

	assert.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("5.00")), "got %s", f.balance(t, 1))

	jobs, err := f.svc.List(1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusFailed, jobs[0].Status)
}

func startedJob(t *testing.T, f *fixture) *models.TranslationJob {
	t.Helper()
	f.fund(t, 1, "10.00")
	book, err := f.svc.UploadBook(1, "book.txt", strings.NewReader("text"), "")
	require.NoError(t, err)
	job, err := f.svc.Start(1, book.ID, "de", models.PricingModelPerPage)
	require.NoError(t, err)
	return job
}

func TestRunCompletesJob(t *testing.T) {
	f := newFixture(stubEngine{output: "translated text"}, stubExtractor{counts: extract.Counts{Pages: 10}})
	job := startedJob(t, f)

	require.NoError(t, f.svc.Run(context.Background(), job.ID))

	got, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	require.NotNil(t, got.ActualCost)
	assert.True(t, got.ActualCost.Equal(got.EstimatedCost))
	assert.NotEmpty(t, got.ResultPath)
	require.NotNil(t, got.CompletedAt)

	rc, name, err := f.svc.Download(1, job.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "translated text", string(data))
	assert.Equal(t, fmt.Sprintf("job_%d_de_book.txt", job.ID), name)
}

func TestRunFailureRefundsDebit(t *testing.T) {
	f := newFixture(stubEngine{err: errors.New("engine unavailable")}, stubExtractor{counts: extract.Counts{Pages: 10}})
	job := startedJob(t, f)
	require.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("7.00")))

	err := f.svc.Run(context.Background(), job.ID)
	require.Error(t, err)

	got, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Contains(t, got.FailureReason, "engine unavailable")

	// Estimated cost credited back.
	assert.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("10.00")), "got %s", f.balance(t, 1))
}

func TestConcurrentRunsRefundOnce(t *testing.T) {
	f := newFixture(stubEngine{err: errors.New("engine unavailable")}, stubExtractor{counts: extract.Counts{Pages: 10}})
	job := startedJob(t, f)
	require.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("7.00")))

	// A redelivered queue entry means two workers run the same job id. Only
	// the one winning the pending->processing swap may fail and refund.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.svc.Run(context.Background(), job.ID)
		}()
	}
	wg.Wait()

	got, err := f.jobs.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("10.00")), "got %s", f.balance(t, 1))
}

func TestRunSkipsTerminalJob(t *testing.T) {
	f := newFixture(stubEngine{output: "x"}, stubExtractor{counts: extract.Counts{Pages: 10}})
	job := startedJob(t, f)

	require.NoError(t, f.svc.Run(context.Background(), job.ID))
	// Redelivery of a completed job must not run the engine or touch money.
	require.NoError(t, f.svc.Run(context.Background(), job.ID))
	assert.True(t, f.balance(t, 1).Equal(decimal.RequireFromString("7.00")))
}

func TestDownloadBeforeCompletion(t *testing.T) {
	f := newFixture(stubEngine{output: "x"}, stubExtractor{counts: extract.Counts{Pages: 10}})
	job := startedJob(t, f)

	_, _, err := f.svc.Download(1, job.ID)
	assert.ErrorIs(t, err, ErrResultNotReady)

	_, _, err = f.svc.Download(2, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
