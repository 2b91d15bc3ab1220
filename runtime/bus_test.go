package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/mocks"
)

func TestBus_DeliversInOrderPerListener(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listenerMock := mocks.NewMockListener(ctrl)
	bus := NewBus(slog.Default(), 16, nil)
	worker := bus.Subscribe("ordered", listenerMock)

	var mu sync.Mutex
	var received []domain.MessageID
	done := make(chan struct{})

	listenerMock.EXPECT().
		Handle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt event.DomainEvent) error {
			added := evt.(event.MessageAdded)
			mu.Lock()
			received = append(received, added.Message.ID)
			if len(received) == 5 {
				close(done)
			}
			mu.Unlock()
			return nil
		}).
		Times(5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When five events are published in order
	for i := 1; i <= 5; i++ {
		bus.Publish(event.MessageAdded{Message: domain.Message{ID: domain.MessageID(i)}, Room: 1})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("listener should have received all events")
	}

	// Then the listener saw them in publish order
	mu.Lock()
	defer mu.Unlock()
	req.Equal([]domain.MessageID{1, 2, 3, 4, 5}, received)
}

func TestBus_PublishNeverBlocksOnFullQueue(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listenerMock := mocks.NewMockListener(ctrl)
	bus := NewBus(slog.Default(), 1, nil)
	worker := bus.Subscribe("slow", listenerMock)

	// Given no worker draining yet: the first event fills the queue and
	// the surplus is dropped without blocking the publisher.
	for i := 1; i <= 3; i++ {
		bus.Publish(event.MessageAdded{Message: domain.Message{ID: domain.MessageID(i)}, Room: 1})
	}

	done := make(chan struct{})
	listenerMock.EXPECT().
		Handle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt event.DomainEvent) error {
			close(done)
			return nil
		}).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("the buffered event should have been delivered")
	}
}

func TestBus_ListenerPanicDoesNotKillWorker(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listenerMock := mocks.NewMockListener(ctrl)
	bus := NewBus(slog.Default(), 16, nil)
	worker := bus.Subscribe("panicky", listenerMock)

	done := make(chan struct{})
	first := listenerMock.EXPECT().
		Handle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.DomainEvent) error {
			panic("boom")
		})
	listenerMock.EXPECT().
		Handle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.DomainEvent) error {
			close(done)
			return nil
		}).
		After(first)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	bus.Publish(event.MessageAdded{Message: domain.Message{ID: 1}, Room: 1})
	bus.Publish(event.MessageAdded{Message: domain.Message{ID: 2}, Room: 1})

	select {
	case <-done:
		// Then the second event survived the first one's panic
	case <-time.After(time.Second):
		req.Fail("worker should keep draining after a listener panic")
	}
}
