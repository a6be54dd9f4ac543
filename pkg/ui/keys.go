package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the dashboard
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Search   key.Binding
	Location key.Binding
	Sentim   key.Binding
	Clear    key.Binding
	Find     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding

	Generate key.Binding
	Save     key.Binding
	Copy     key.Binding
	Close    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open review")),
		PrevPage: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous page")),
		NextPage: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search reviews")),
		Location: key.NewBinding(key.WithKeys("l", "L"), key.WithHelp("l/L", "cycle location")),
		Sentim:   key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s/S", "cycle sentiment")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Find:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "find on page")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Generate: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "AI suggest")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save reply")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy reply")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp implements help.KeyMap for the list footer
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Search, k.Location, k.Sentim, k.PrevPage, k.NextPage, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap for the help overlay
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.PrevPage, k.NextPage},
		{k.Search, k.Location, k.Sentim, k.Clear, k.Find},
		{k.Reload, k.Help, k.Quit},
		{k.Generate, k.Save, k.Copy, k.Close},
	}
}

// detailKeys is the help.KeyMap shown under the reply editor
type detailKeys struct{ keyMap }

func (k detailKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Save, k.Copy, k.Close}
}

func (k detailKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
