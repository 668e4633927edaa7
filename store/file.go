package store

import (
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultResumeFile = ".resume"

// FileStore keeps cursors in a small YAML file, one `dialogId: messageId` line per dialog.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() Cursors {
	out := make(Cursors)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			glog.Errorf("resume: error read `%s`, starting from scratch: %v", s.path, err)
		}
		return out
	}

	var parsed map[int64]int64
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		glog.Errorf("resume: ignore unparsable `%s`: %v", s.path, err)
		return out
	}
	for k, v := range parsed {
		if v < 0 {
			glog.Warningf("resume: ignore negative cursor %d of dialog %d", v, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Save writes the merged cursors to a temp file in the same dir, then renames it over the target.
func (s *FileStore) Save(update Cursors) error {
	merged := s.Load().Merge(update)

	data, err := yaml.Marshal(map[int64]int64(merged))
	if err != nil {
		return errors.Wrap(err, "resume: marshal")
	}

	dir := filepath.Dir(s.path)
	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "resume: create temp file in `%s`", dir)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "resume: write `%s`", tmp)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "resume: sync `%s`", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "resume: close `%s`", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "resume: rename to `%s`", s.path)
	}

	glog.V(2).Infof("resume: saved %d cursors to %s", len(merged), s.path)
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
