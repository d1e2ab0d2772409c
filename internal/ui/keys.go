package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	byteEnter     = '\n'
	byteBackspace = 0x7f
	byteEsc       = 0x1b
)

// DecodeKey turns one read of up to three bytes into a key message. Only the
// first byte is dispatched on; the other two are consulted for ESC [ A-D
// arrow sequences. Unrecognised escape sequences report false.
func DecodeKey(in []byte) (tea.KeyMsg, bool) {
	if len(in) == 0 {
		return tea.KeyMsg{}, false
	}
	switch in[0] {
	case byteEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}, true
	case byteBackspace:
		return tea.KeyMsg{Type: tea.KeyBackspace}, true
	case byteEsc:
		if len(in) == 1 || in[1] == 0 {
			return tea.KeyMsg{Type: tea.KeyEsc}, true
		}
		if in[1] != '[' || len(in) < 3 {
			return tea.KeyMsg{}, false
		}
		switch in[2] {
		case 'A':
			return tea.KeyMsg{Type: tea.KeyUp}, true
		case 'B':
			return tea.KeyMsg{Type: tea.KeyDown}, true
		case 'C':
			return tea.KeyMsg{Type: tea.KeyRight}, true
		case 'D':
			return tea.KeyMsg{Type: tea.KeyLeft}, true
		}
		return tea.KeyMsg{}, false
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune(in[0])}}, true
	}
}

// listKeyMap holds the LIST view commands.
type listKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Archive key.Binding
	Quit    key.Binding
}

func defaultListKeys() listKeyMap {
	return listKeyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("space/enter", "toggle completed status")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new entry")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Archive: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear completed")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

// entryByte returns the byte a printable key message carries.
func entryByte(msg tea.KeyMsg) (byte, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) != 1 || msg.Runes[0] > 0xff {
			return 0, false
		}
		return byte(msg.Runes[0]), true
	case tea.KeySpace:
		return ' ', true
	}
	return 0, false
}
