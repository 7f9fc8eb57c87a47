package libutil_test

import (
	"testing"

	"skyibl/libutil"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	order *[]string
}

func (r recorder) Release() {
	*r.order = append(*r.order, r.name)
}

type deleter struct {
	deleted *bool
}

func (d deleter) Delete() {
	*d.deleted = true
}

func TestCleanupReleasesInReverseOrder(t *testing.T) {
	var order []string
	var cleanup libutil.Cleanup
	cleanup.Add(recorder{"a", &order})
	cleanup.Add(nil)
	cleanup.Add(recorder{"b", &order})
	cleanup.Add(recorder{"c", &order})

	cleanup.Release()
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.Empty(t, cleanup)

	cleanup.Release()
	assert.Len(t, order, 3)
}

func TestCleanupForget(t *testing.T) {
	var order []string
	var cleanup libutil.Cleanup
	cleanup.Add(recorder{"a", &order})
	cleanup.Forget()
	cleanup.Release()
	assert.Empty(t, order)
}

func TestCleanupDeleter(t *testing.T) {
	deleted := false
	var cleanup libutil.Cleanup
	cleanup.AddDeleter(deleter{&deleted})
	cleanup.Release()
	assert.True(t, deleted)
}

func TestLog2I(t *testing.T) {
	assert.Equal(t, 0, libutil.Log2I(1))
	assert.Equal(t, 1, libutil.Log2I(2))
	assert.Equal(t, 1, libutil.Log2I(3))
	assert.Equal(t, 9, libutil.Log2I(512))
	assert.Equal(t, 8, libutil.Log2I(500))
}
