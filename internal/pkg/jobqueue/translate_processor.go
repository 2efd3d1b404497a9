package jobqueue

import (
	"context"
	"fmt"
)

// TranslationRunner executes a translation job end to end: it transitions
// the job to processing, produces the translated document and records the
// terminal state. On error the runner has already marked the job failed and
// refunded the debit; the queue only logs and drops the Redis entry.
type TranslationRunner interface {
	Run(ctx context.Context, jobID uint) error
}

// processTranslateDocumentJob hands the job to the translation runner
func (q *Queue) processTranslateDocumentJob(ctx context.Context, job *Job) error {
	payload, err := TranslateDocumentJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid translate payload: %w", err)
	}

	if q.translationRunner == nil {
		return fmt.Errorf("no translation runner configured")
	}

	return q.translationRunner.Run(ctx, payload.JobID)
}
