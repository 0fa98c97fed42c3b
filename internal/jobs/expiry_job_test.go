package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeExpirer struct {
	calls     int
	batchSize int
	expired   int
	err       error
}

func (f *fakeExpirer) ExpireDue(ctx context.Context, batchSize int) (int, error) {
	f.calls++
	f.batchSize = batchSize
	if f.err != nil {
		return 0, f.err
	}
	return f.expired, nil
}

func TestExpirySweepJob_Run(t *testing.T) {
	expirer := &fakeExpirer{expired: 3}
	job := NewExpirySweepJob(expirer, zap.NewNop())

	job.Run()

	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, DefaultExpiryBatchSize, expirer.batchSize)
}

func TestExpirySweepJob_RunSurvivesError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("database down")}
	job := NewExpirySweepJob(expirer, zap.NewNop())

	// A failing sweep logs and returns; the next scheduled run retries
	job.Run()
	job.Run()

	assert.Equal(t, 2, expirer.calls)
}
