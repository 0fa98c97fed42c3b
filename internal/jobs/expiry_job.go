package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpirySweepJobName is the name of the quotation expiry sweep job
const ExpirySweepJobName = "quotation_expiry_sweep"

// DefaultExpiryBatchSize caps how many quotations a single sweep run expires.
// Expiry is also applied lazily on read, so a sweep that leaves stragglers
// behind only delays their status flip until the next run or the next read.
const DefaultExpiryBatchSize = 100

// defaultExpiryTimeout bounds a single sweep run
const defaultExpiryTimeout = 2 * time.Minute

// QuotationExpirer defines the interface for sweeping expired quotations.
// This interface allows the job to call the service without importing the
// service package directly.
type QuotationExpirer interface {
	// ExpireDue transitions quotations whose validity window has closed.
	// Returns the number of quotations expired in this batch.
	ExpireDue(ctx context.Context, batchSize int) (int, error)
}

// ExpirySweepJob flips non-terminal quotations to expired once their
// valid_until date has passed.
type ExpirySweepJob struct {
	expirer   QuotationExpirer
	logger    *zap.Logger
	batchSize int
	timeout   time.Duration
}

// NewExpirySweepJob creates a new expiry sweep job.
func NewExpirySweepJob(expirer QuotationExpirer, logger *zap.Logger) *ExpirySweepJob {
	return &ExpirySweepJob{
		expirer:   expirer,
		logger:    logger,
		batchSize: DefaultExpiryBatchSize,
		timeout:   defaultExpiryTimeout,
	}
}

// Run executes the expiry sweep.
// This is called by the scheduler according to the cron expression.
func (j *ExpirySweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	expired, err := j.expirer.ExpireDue(ctx, j.batchSize)
	if err != nil {
		j.logger.Error("quotation expiry sweep failed",
			zap.Error(err),
			zap.Int("expired_before_failure", expired),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if expired > 0 {
		j.logger.Info("quotation expiry sweep completed",
			zap.Int("expired", expired),
			zap.Duration("duration", time.Since(start)))
	}
}
