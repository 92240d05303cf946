package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	failN    int
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failN > 0 {
		p.failN--
		return errors.New("broker unavailable")
	}
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

func TestDispatcherPublishesOnActionSubject(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, DispatcherConfig{SubjectPrefix: "asset.history.", Workers: 1, Retries: 2})
	d.Start(context.Background())
	defer d.Stop()

	d.Dispatch(HistoryEvent{ID: "h1", AssetID: "a1", Action: "assigned"})

	require.Eventually(t, func() bool { return len(pub.published()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"asset.history.assigned"}, pub.published())
}

func TestDispatcherRetriesAndReports(t *testing.T) {
	pub := &recordingPublisher{failN: 1}
	d := NewDispatcher(pub, DispatcherConfig{Workers: 1, Retries: 2})

	var mu sync.Mutex
	var outcomes []error
	d.OnPublish(func(action string, err error) {
		mu.Lock()
		outcomes = append(outcomes, err)
		mu.Unlock()
	})
	d.Start(context.Background())
	defer d.Stop()

	d.Dispatch(HistoryEvent{ID: "h1", Action: "created"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(outcomes) == 2
	}, 3*time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Error(t, outcomes[0])
	assert.NoError(t, outcomes[1])
	assert.Equal(t, "asset.history.created", pub.published()[0])
}

func TestDispatcherWithoutPublisherIsNoop(t *testing.T) {
	d := NewDispatcher(nil, DispatcherConfig{})
	d.Start(context.Background())
	d.Dispatch(HistoryEvent{ID: "h1", Action: "created"})
	d.Stop()
}
