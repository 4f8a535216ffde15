package ygggo_session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskQueue_FlushRunsInOrder(t *testing.T) {
	q := NewTaskQueue()
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}
	q.Post(nil)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Flush())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, q.Flush())
}

func TestTaskQueue_PostDuringFlushWaits(t *testing.T) {
	q := NewTaskQueue()
	ran := 0
	q.Post(func() {
		ran++
		q.Post(func() { ran++ })
	})
	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, 2, ran)
}

func TestTaskQueue_PanicKeepsRemainingCallbacks(t *testing.T) {
	q := NewTaskQueue()
	var got []string
	q.Post(func() { got = append(got, "a") })
	q.Post(func() {
		q.Post(func() { got = append(got, "late") })
		panic("boom")
	})
	q.Post(func() { got = append(got, "c") })
	q.Post(func() { got = append(got, "d") })

	assert.PanicsWithValue(t, "boom", func() { q.Flush() })
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 3, q.Len())

	assert.Equal(t, 3, q.Flush())
	assert.Equal(t, []string{"a", "c", "d", "late"}, got)
	assert.Equal(t, 0, q.Len())
}
