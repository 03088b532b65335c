package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOrdersAndBreaksTiesFIFO(t *testing.T) {
	type item struct {
		name string
		pri  int
	}
	q := NewQueue(func(a, b item) bool { return a.pri < b.pri })
	for _, it := range []item{{"c", 3}, {"a1", 1}, {"b", 2}, {"a2", 1}, {"a3", 1}} {
		q.Push(it)
	}
	require.Equal(t, 5, q.Len())

	top, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "a1", top.name)

	var got []string
	for q.Len() > 0 {
		it, _ := q.Pop()
		got = append(got, it.name)
	}
	assert.Equal(t, []string{"a1", "a2", "a3", "b", "c"}, got)

	_, ok = q.Pop()
	assert.False(t, ok)
}
