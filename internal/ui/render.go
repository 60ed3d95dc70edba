package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pocatalin/phone-agenda/internal/contacts"
)

// RenderList renders l for the list command. Plain output is one
// "name | phone | email" line per contact; styled output is a bordered table.
// An empty list renders as the empty string.
func RenderList(l contacts.List, styled bool) string {
	if len(l) == 0 {
		return ""
	}
	if !styled {
		var b strings.Builder
		for _, c := range l {
			b.WriteString(c.Name + " | " + c.Phone + " | " + c.Email + "\n")
		}
		return b.String()
	}

	rows := make([][]string, len(l))
	for i, c := range l {
		rows[i] = []string{c.Name, c.Phone, c.Email}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dimColor)).
		Headers("NAME", "PHONE", "EMAIL").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String() + "\n"
}
