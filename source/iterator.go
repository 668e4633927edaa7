package source

import (
	"context"
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/mqy/chatdump/chatstore"
)

const (
	DefaultPageSize = 100

	BackoffMinInterval = 1 * time.Second
	BackoffMaxInterval = 60 * time.Second
	BackoffMultiplier  = 1.5

	// page fetch attempts before giving up.
	maxFetchAttempts = 5
)

// Iterator is a lazy ascending sequence of messages of one dialog, strictly after a cursor.
// It pulls pages from ISource on demand and stops at the first empty page.
type Iterator struct {
	src      ISource
	dialog   *chatstore.Dialog
	afterID  int64
	pageSize int

	buf  []*chatstore.Message
	cur  *chatstore.Message
	done bool
	err  error

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewIterator(src ISource, dialog *chatstore.Dialog, afterID int64, pageSize int) *Iterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Iterator{
		src:      src,
		dialog:   dialog,
		afterID:  afterID,
		pageSize: pageSize,
		sleep:    sleepCtx,
	}
}

// Next advances to the next message. It returns false when exhausted or on error, see Err().
func (it *Iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if len(it.buf) == 0 {
		if it.done {
			return false
		}
		if err := it.fetch(ctx); err != nil {
			it.err = err
			return false
		}
		if len(it.buf) == 0 {
			it.done = true
			return false
		}
	}

	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	it.afterID = it.cur.ID
	return true
}

// Message returns the current message.
func (it *Iterator) Message() *chatstore.Message {
	return it.cur
}

func (it *Iterator) Err() error {
	return it.err
}

func (it *Iterator) fetch(ctx context.Context) error {
	var sleep time.Duration
	var page []*chatstore.Message
	var err error

	for attempt := 1; ; attempt++ {
		page, err = it.src.GetMessages(ctx, it.dialog, it.afterID, it.pageSize)
		if err == nil {
			break
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "get messages cancelled")
		}
		if attempt >= maxFetchAttempts {
			return errors.Wrapf(err, "get messages after %d: giving up after %d attempts", it.afterID, attempt)
		}
		backoff(&sleep)
		glog.Errorf("iterator: get messages after %d err: %v, retry in %s", it.afterID, err, sleep)
		if err := it.sleep(ctx, sleep); err != nil {
			return errors.Wrap(err, "get messages cancelled")
		}
	}

	// Guard against sources that ignore the order or the cursor.
	sort.Slice(page, func(i, j int) bool { return page[i].ID < page[j].ID })
	buf := page[:0]
	last := it.afterID
	for _, m := range page {
		if m == nil || m.ID <= last {
			continue
		}
		if m.DialogID == 0 {
			m.DialogID = it.dialog.ID
		}
		buf = append(buf, m)
		last = m.ID
	}
	if len(page) > 0 && len(buf) == 0 {
		glog.Warningf("iterator: page of %d messages has nothing after %d, stop", len(page), it.afterID)
	}
	glog.V(5).Infof("iterator: fetched %d messages after %d", len(buf), it.afterID)
	it.buf = buf
	return nil
}

func backoff(d *time.Duration) {
	if *d == 0 {
		*d = BackoffMinInterval
	} else {
		*d = time.Duration(float64(*d) * BackoffMultiplier)
		if *d < BackoffMaxInterval {
			*d = d.Truncate(time.Millisecond)
		} else {
			*d = BackoffMaxInterval
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
