package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	assert.Empty(t, s.Load())

	require.NoError(t, s.Save(Cursors{1: 10, 2: 20}))
	require.NoError(t, s.Save(Cursors{2: 25}))
	assert.Equal(t, Cursors{1: 10, 2: 25}, s.Load())
	require.NoError(t, s.Close())

	// reopen: state survives.
	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, Cursors{1: 10, 2: 25}, s.Load())
}

func TestBoltStoreSkipsBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(resumeBucket)
		if err != nil {
			return err
		}
		if err := b.Put([]byte("x"), []byte("1")); err != nil {
			return err
		}
		if err := b.Put([]byte("3"), []byte("y")); err != nil {
			return err
		}
		return b.Put([]byte("4"), []byte("40"))
	}))

	assert.Equal(t, Cursors{4: 40}, s.Load())
}

func TestBoltStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".resume")
	// a YAML cursor file left by the file backend.
	require.NoError(t, os.WriteFile(path, []byte("1: 10\n2: 20\n"), 0600))

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Empty(t, s.Load())
	require.NoError(t, s.Save(Cursors{3: 30}))
	assert.Equal(t, Cursors{3: 30}, s.Load())

	aside, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, aside, 1)
	data, err := os.ReadFile(aside[0])
	require.NoError(t, err)
	assert.Equal(t, "1: 10\n2: 20\n", string(data))
}

func TestBoltStoreGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.db")
	garbage := make([]byte, 3*4096)
	for i := range garbage {
		garbage[i] = byte(i * 7)
	}
	require.NoError(t, os.WriteFile(path, garbage, 0600))

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Empty(t, s.Load())
}
