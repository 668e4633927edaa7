package store

import (
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var resumeBucket = []byte("resume")

const corruptSuffixLayout = "20060102_150405"

// BoltStore keeps cursors in a bbolt bucket, keyed by decimal dialog id.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens the db at path. A file that is not a bolt db (a YAML .resume, garbage)
// is moved aside and the store starts empty. A lock held by another process is an error.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := openBolt(path)
	if err == nil {
		return &BoltStore{db: db}, nil
	}
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, errors.Wrapf(err, "resume: bolt db `%s` is locked", path)
	}

	aside := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format(corruptSuffixLayout))
	glog.Errorf("resume: can not open bolt db `%s`: %v, moving it to `%s` and starting from scratch",
		path, err, aside)
	if rerr := os.Rename(path, aside); rerr != nil {
		return nil, errors.Wrapf(err, "resume: open bolt db `%s` (move aside: %v)", path, rerr)
	}
	if db, err = openBolt(path); err != nil {
		return nil, errors.Wrapf(err, "resume: open bolt db `%s`", path)
	}
	return &BoltStore{db: db}, nil
}

func openBolt(path string) (*bbolt.DB, error) {
	// The file lock also keeps a second process away from the same store.
	return bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
}

func (s *BoltStore) Load() Cursors {
	out := make(Cursors)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(resumeBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			dialogID, err := parseID(k)
			if err != nil {
				glog.Errorf("resume: ignore bad dialog key %q: %v", k, err)
				return nil
			}
			msgID, err := parseID(v)
			if err != nil || msgID < 0 {
				glog.Errorf("resume: ignore bad cursor %q of dialog %d", v, dialogID)
				return nil
			}
			out[dialogID] = msgID
			return nil
		})
	})
	if err != nil {
		glog.Errorf("resume: error read bolt db, starting from scratch: %v", err)
		return make(Cursors)
	}
	return out
}

// Save puts each updated key; keys not in `update` are left untouched, which is the merge.
func (s *BoltStore) Save(update Cursors) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(resumeBucket)
		if err != nil {
			return errors.Wrap(err, "resume: create bucket")
		}
		for _, dialogID := range update.DialogIDs() {
			if err := b.Put(formatID(dialogID), formatID(update[dialogID])); err != nil {
				return errors.Wrapf(err, "resume: put dialog %d", dialogID)
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
