package todoclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtaskTransforms(t *testing.T) {
	base := []Subtask{{Title: "a"}, {Title: "b", Completed: true}}

	added, err := AddSubtask(base, "  c ")
	require.NoError(t, err)
	assert.Equal(t, []Subtask{{Title: "a"}, {Title: "b", Completed: true}, {Title: "c"}}, added)

	toggled, err := ToggleSubtask(base, 1)
	require.NoError(t, err)
	assert.False(t, toggled[1].Completed)

	renamed, err := RenameSubtask(base, 0, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", renamed[0].Title)

	removed, err := RemoveSubtask(base, 0)
	require.NoError(t, err)
	assert.Equal(t, []Subtask{{Title: "b", Completed: true}}, removed)

	// the input is never modified
	assert.Equal(t, []Subtask{{Title: "a"}, {Title: "b", Completed: true}}, base)
}

func TestSubtaskTransforms_Errors(t *testing.T) {
	base := []Subtask{{Title: "a"}}

	_, err := AddSubtask(base, "   ")
	assert.ErrorIs(t, err, ErrInvalidTitle)
	_, err = AddSubtask(base, strings.Repeat("x", 61))
	assert.ErrorIs(t, err, ErrInvalidTitle)
	_, err = RenameSubtask(base, 0, "")
	assert.ErrorIs(t, err, ErrInvalidTitle)

	for _, i := range []int{-1, 1} {
		_, err = ToggleSubtask(base, i)
		assert.ErrorIs(t, err, ErrNoSubtask)
		_, err = RemoveSubtask(base, i)
		assert.ErrorIs(t, err, ErrNoSubtask)
		_, err = RenameSubtask(base, i, "x")
		assert.ErrorIs(t, err, ErrNoSubtask)
	}
}
