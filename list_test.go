package edfkernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListInsertOrdering(t *testing.T) {
	l := NewList[string]()
	l.Insert("b", 20)
	l.Insert("a", 10)
	l.Insert("c", 30)

	var got []string
	for n := l.Front(); n != nil; {
		got = append(got, n.Value)
		next := n.next
		if next == l.tail {
			break
		}
		n = next
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestListInsertStableOnEqualKeys(t *testing.T) {
	l := NewList[string]()
	l.Insert("first", 10)
	l.Insert("second", 10)
	l.Insert("third", 10)

	require.Equal(t, "first", l.Front().Value)
	require.Equal(t, "second", l.Front().next.Value)
	require.Equal(t, "third", l.Front().next.next.Value)
}

func TestListRemoveSentinelIsNoop(t *testing.T) {
	l := NewList[string]()
	l.Insert("only", 1)
	require.Equal(t, 1, l.Len())

	l.Remove(l.head)
	l.Remove(l.tail)
	require.Equal(t, 1, l.Len())
}

func TestListRemove(t *testing.T) {
	l := NewList[string]()
	a := l.Insert("a", 1)
	b := l.Insert("b", 2)
	l.Insert("c", 3)

	l.Remove(b)
	require.Equal(t, 2, l.Len())
	require.Equal(t, "a", l.Front().Value)
	require.Equal(t, "c", l.Front().next.Value)

	l.Remove(a)
	require.Equal(t, 1, l.Len())
	require.Equal(t, "c", l.Front().Value)
}

func TestListPushBackFIFO(t *testing.T) {
	l := NewList[int]()
	l.PushBack(1)
	l.PushBack(2)
	l.PushBack(3)

	require.Equal(t, 1, l.Front().Value)
	require.Equal(t, 2, l.Front().next.Value)
	require.Equal(t, 3, l.Front().next.next.Value)
}

func TestListFrontEmpty(t *testing.T) {
	l := NewList[int]()
	require.Nil(t, l.Front())
}
