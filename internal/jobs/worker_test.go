package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSessionCleaner is a mock implementation of SessionCleaner
type MockSessionCleaner struct {
	mock.Mock
}

func (m *MockSessionCleaner) Cleanup(keepLatest int) (int, error) {
	args := m.Called(keepLatest)
	return args.Int(0), args.Error(1)
}

func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let a few ticks fire, then stop.
	time.Sleep(350 * time.Millisecond)
	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorker_ProcessorErrorKeepsPolling(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("boom"))

	worker := NewWorker(mockProcessor, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	worker.Stop()
	wg.Wait()

	// Errors are logged, not fatal; the worker keeps ticking.
	assert.GreaterOrEqual(t, len(mockProcessor.Calls), 2)
}

func TestRetentionSweeper_ProcessJobs(t *testing.T) {
	cleaner := new(MockSessionCleaner)
	cleaner.On("Cleanup", 3).Return(2, nil)

	sweeper := NewRetentionSweeper(cleaner, 3, nil)

	err := sweeper.ProcessJobs(context.Background())
	assert.NoError(t, err)
	cleaner.AssertExpectations(t)
}

func TestRetentionSweeper_CleanupError(t *testing.T) {
	cleaner := new(MockSessionCleaner)
	cleaner.On("Cleanup", 3).Return(0, errors.New("disk gone"))

	sweeper := NewRetentionSweeper(cleaner, 3, nil)

	err := sweeper.ProcessJobs(context.Background())
	assert.Error(t, err)
}
