package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	base := Cursors{1: 10, 2: 20}
	out := base.Merge(Cursors{2: 5, 3: 30})

	// new entries win per key, even when smaller.
	assert.Equal(t, Cursors{1: 10, 2: 5, 3: 30}, out)
	// base is not modified.
	assert.Equal(t, Cursors{1: 10, 2: 20}, base)

	assert.Equal(t, Cursors{}, Cursors(nil).Merge(nil))
}

func TestCopyAndGet(t *testing.T) {
	var c Cursors
	assert.Nil(t, c.Copy())
	assert.Equal(t, int64(0), c.Get(1))

	c = Cursors{3: 30, 1: 10}
	cp := c.Copy()
	cp[1] = 11
	assert.Equal(t, int64(10), c.Get(1))
	assert.Equal(t, []int64{1, 3}, c.DialogIDs())
}
