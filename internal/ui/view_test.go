package ui

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"tday/internal/storage"
)

const clearHome = "\x1b[2J\x1b[H"

func TestRenderList(t *testing.T) {
	page := Page{
		Entries: []storage.Entry{
			{ID: 2, Description: "open"},
			{ID: 1, Description: "done", Completed: true},
		},
		Selection: 1,
	}
	reset := resetStyle.String()

	want := clearHome + "tday\n\n" +
		"  [ ] open" + reset + "\n" +
		selectedStyle.String() + "> " + reset + "[x] " + completedStyle.String() + "done" + reset + "\n" +
		"\n" + listHelp
	assert.Equal(t, want, renderList(page))
	assert.Equal(t, "\x1b[9m", completedStyle.String())
}

func TestRenderList_Empty(t *testing.T) {
	want := clearHome + "tday\n\nno entries yet\n\n" + listHelp
	assert.Equal(t, want, renderList(Page{}))
}

func TestRenderNew_CursorPlacement(t *testing.T) {
	var b Buffer
	fill(&b, "hey")
	b.Left()

	want := clearHome + "tday\n\n" +
		"new task description:\n" +
		ansi.CursorPosition(1, 6) + "enter to save, escape to go back\n" +
		ansi.CursorPosition(1, 4) + "> hey" +
		ansi.CursorPosition(5, 4)
	assert.Equal(t, want, renderNew(&b))
}

func TestRenderEdit_ShowsCurrentDescription(t *testing.T) {
	var b Buffer
	b.Set("fox")

	got := renderEdit(storage.Entry{ID: 7, Description: "foo"}, &b)
	assert.Contains(t, got, "description: foo\n")
	assert.Contains(t, got, "escape to discard changes")
	assert.Contains(t, got, "> fox"+ansi.CursorPosition(6, 4))
}
