package backend

import "github.com/gdamore/tcell/v2"

// Theme holds the styles the editor paints with.
type Theme struct {
	Text    tcell.Style
	Status  tcell.Style
	Prompt  tcell.Style
	Error   tcell.Style
	Warning tcell.Style
	Search  tcell.Style
	Block   tcell.Style
	Tabs    tcell.Style
	Active  tcell.Style
}

// DefaultTheme returns the built-in styles. Search matches are black on
// yellow.
func DefaultTheme() Theme {
	base := tcell.StyleDefault
	return Theme{
		Text:    base,
		Status:  base.Reverse(true),
		Prompt:  base.Bold(true),
		Error:   base.Foreground(tcell.ColorRed).Bold(true),
		Warning: base.Foreground(tcell.ColorYellow),
		Search:  base.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack),
		Block:   base.Reverse(true),
		Tabs:    base.Dim(true),
		Active:  base.Bold(true).Underline(true),
	}
}
