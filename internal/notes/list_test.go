package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextID(t *testing.T) {
	assert.Equal(t, 0, NextID(nil))
	assert.Equal(t, 1, NextID([]Note{{ID: 0, Text: "a"}}))
	assert.Equal(t, 8, NextID([]Note{{ID: 7}, {ID: 2}}))
}

func TestAppend_DoesNotAliasInput(t *testing.T) {
	list := make([]Note, 1, 4)
	list[0] = Note{ID: 0, Text: "a"}

	next, n := Append(list, "b")
	assert.Equal(t, Note{ID: 1, Text: "b"}, n)
	assert.Len(t, next, 2)
	assert.Len(t, list, 1)

	// a second append from the same base must not clobber the first result
	other, _ := Append(list, "c")
	assert.Equal(t, "b", next[1].Text)
	assert.Equal(t, "c", other[1].Text)
}

func TestRemoveAt(t *testing.T) {
	list := []Note{{0, "a"}, {1, "b"}, {2, "c"}}

	next, removed, err := RemoveAt(list, 1)
	require.NoError(t, err)
	assert.Equal(t, Note{1, "b"}, removed)
	assert.Equal(t, []Note{{0, "a"}, {2, "c"}}, next)
	assert.Len(t, list, 3, "input untouched")

	_, _, err = RemoveAt(list, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = RemoveAt(list, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestIndexOf(t *testing.T) {
	list := []Note{{4, "a"}, {9, "b"}}
	assert.Equal(t, 1, IndexOf(list, 9))
	assert.Equal(t, -1, IndexOf(list, 5))
}

func TestIDReuseAfterDeletingMax(t *testing.T) {
	list, _ := Append(nil, "a")
	list, _ = Append(list, "b")
	list, _, _ = RemoveAt(list, 1)
	_, n := Append(list, "c")
	assert.Equal(t, 1, n.ID)
}
