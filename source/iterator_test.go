package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/mqy/chatdump/chatstore"
	source_mock "github.com/mqy/chatdump/source/mock"
)

func msgs(ids ...int64) []*chatstore.Message {
	var out []*chatstore.Message
	for _, id := range ids {
		out = append(out, &chatstore.Message{ID: id})
	}
	return out
}

func collect(ctx context.Context, it *Iterator) []int64 {
	var ids []int64
	for it.Next(ctx) {
		ids = append(ids, it.Message().ID)
	}
	return ids
}

func noSleep(sleeps *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return ctx.Err()
	}
}

func TestIteratorPages(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	src := source_mock.NewMockISource(mockCtrl)
	dialog := &chatstore.Dialog{ID: 9, Name: "chat"}
	ctx := context.Background()

	gomock.InOrder(
		src.EXPECT().GetMessages(ctx, dialog, int64(0), 2).Return(msgs(2, 1), nil),
		src.EXPECT().GetMessages(ctx, dialog, int64(2), 2).Return(msgs(3), nil),
		src.EXPECT().GetMessages(ctx, dialog, int64(3), 2).Return(nil, nil),
	)

	it := NewIterator(src, dialog, 0, 2)
	assert.Equal(t, []int64{1, 2, 3}, collect(ctx, it))
	assert.NoError(t, it.Err())

	// exhausted iterator does not fetch again.
	assert.False(t, it.Next(ctx))
}

func TestIteratorSkipsAtOrBeforeCursor(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	src := source_mock.NewMockISource(mockCtrl)
	dialog := &chatstore.Dialog{ID: 9}
	ctx := context.Background()

	gomock.InOrder(
		src.EXPECT().GetMessages(ctx, dialog, int64(5), DefaultPageSize).Return(msgs(4, 5, 6, 6), nil),
		src.EXPECT().GetMessages(ctx, dialog, int64(6), DefaultPageSize).Return(msgs(), nil),
	)

	it := NewIterator(src, dialog, 5, 0)
	assert.Equal(t, []int64{6}, collect(ctx, it))
	assert.NoError(t, it.Err())
	assert.Equal(t, int64(9), it.Message().DialogID)
}

func TestIteratorRetry(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	src := source_mock.NewMockISource(mockCtrl)
	dialog := &chatstore.Dialog{ID: 1}
	ctx := context.Background()

	gomock.InOrder(
		src.EXPECT().GetMessages(ctx, dialog, int64(0), 10).Return(nil, errors.New("flood wait")),
		src.EXPECT().GetMessages(ctx, dialog, int64(0), 10).Return(nil, errors.New("flood wait")),
		src.EXPECT().GetMessages(ctx, dialog, int64(0), 10).Return(msgs(1), nil),
		src.EXPECT().GetMessages(ctx, dialog, int64(1), 10).Return(nil, nil),
	)

	var sleeps []time.Duration
	it := NewIterator(src, dialog, 0, 10)
	it.sleep = noSleep(&sleeps)

	assert.Equal(t, []int64{1}, collect(ctx, it))
	assert.NoError(t, it.Err())
	assert.Equal(t, []time.Duration{BackoffMinInterval, 1500 * time.Millisecond}, sleeps)
}

func TestIteratorGiveUp(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	src := source_mock.NewMockISource(mockCtrl)
	dialog := &chatstore.Dialog{ID: 1}
	ctx := context.Background()

	boom := errors.New("boom")
	src.EXPECT().GetMessages(ctx, dialog, int64(0), 10).Return(nil, boom).Times(maxFetchAttempts)

	var sleeps []time.Duration
	it := NewIterator(src, dialog, 0, 10)
	it.sleep = noSleep(&sleeps)

	assert.False(t, it.Next(ctx))
	assert.ErrorIs(t, it.Err(), boom)
	assert.Len(t, sleeps, maxFetchAttempts-1)

	// sticky error.
	assert.False(t, it.Next(ctx))
}

func TestIteratorCancelled(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	src := source_mock.NewMockISource(mockCtrl)
	dialog := &chatstore.Dialog{ID: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src.EXPECT().GetMessages(ctx, dialog, int64(0), 10).Return(nil, context.Canceled).Times(1)

	it := NewIterator(src, dialog, 0, 10)
	assert.False(t, it.Next(ctx))
	assert.ErrorIs(t, it.Err(), context.Canceled)
}

func TestBackoff(t *testing.T) {
	var d time.Duration
	backoff(&d)
	assert.Equal(t, BackoffMinInterval, d)
	backoff(&d)
	assert.Equal(t, 1500*time.Millisecond, d)

	d = 50 * time.Second
	backoff(&d)
	assert.Equal(t, BackoffMaxInterval, d)
}
