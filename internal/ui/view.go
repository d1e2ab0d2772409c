package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"tday/internal/storage"
)

const (
	title = "tday"

	listHelp = "up (k) / down (j) to move selection\n" +
		"space/enter to toggle completed status\n" +
		"(n)ew entry, (e)dit, (d)elete, (x) to clear completed\n" +
		"escape to (q)uit\n"

	newHeader  = "new task description:"
	newFooter  = "enter to save, escape to go back"
	editFooter = "enter to save, escape to discard changes"

	// Rows are 1-based: title, blank, header, input, blank, footer.
	inputRow  = 4
	footerRow = 6
	// "> " occupies columns 1-2.
	inputColOffset = 3

	emptyPage = "no entries yet"
)

var (
	selectedStyle  = ansi.Style{}.ForegroundColor(ansi.Yellow)
	completedStyle = ansi.Style{}.Strikethrough()
	resetStyle     = ansi.Style{}.Reset()
)

func frameStart(b *strings.Builder) {
	b.WriteString(ansi.EraseEntireScreen)
	b.WriteString(ansi.CursorHomePosition)
	b.WriteString(title)
	b.WriteString("\n\n")
}

func renderList(p Page) string {
	var b strings.Builder
	frameStart(&b)
	for i, e := range p.Entries {
		if i == p.Selection {
			b.WriteString(selectedStyle.String())
			b.WriteString("> ")
			b.WriteString(resetStyle.String())
		} else {
			b.WriteString("  ")
		}
		if e.Completed {
			b.WriteString("[x] ")
			b.WriteString(completedStyle.String())
		} else {
			b.WriteString("[ ] ")
		}
		b.WriteString(e.Description)
		b.WriteString(resetStyle.String())
		b.WriteString("\n")
	}
	if len(p.Entries) == 0 {
		b.WriteString(emptyPage)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listHelp)
	return b.String()
}

func renderNew(buf *Buffer) string {
	return renderInput(newHeader, newFooter, buf)
}

func renderEdit(target storage.Entry, buf *Buffer) string {
	return renderInput("description: "+target.Description, editFooter, buf)
}

func renderInput(header, footer string, buf *Buffer) string {
	var b strings.Builder
	frameStart(&b)
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(ansi.CursorPosition(1, footerRow))
	b.WriteString(footer)
	b.WriteString("\n")
	b.WriteString(ansi.CursorPosition(1, inputRow))
	b.WriteString("> ")
	b.WriteString(buf.String())
	b.WriteString(ansi.CursorPosition(buf.Cursor()+inputColOffset, inputRow))
	return b.String()
}
