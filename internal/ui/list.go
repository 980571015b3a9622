package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/melodycompare/mcx/internal/models"
)

var (
	_ list.Item = libraryItem{}
	_ list.Item = catalogItem{}
)

// libraryItem wraps [models.LibraryItem] to implement [list.Item].
type libraryItem struct {
	item models.LibraryItem
}

func (i libraryItem) FilterValue() string { return i.item.SongTitle }
func (i libraryItem) Title() string       { return i.item.SongTitle }
func (i libraryItem) Description() string {
	return fmt.Sprintf("%s risk • %.0f/100 • %s",
		i.item.Data.RiskLevel, i.item.Data.RiskScore, i.item.Date.Format("Jan 2, 2006"))
}

// catalogItem wraps [models.CatalogItem] to implement [list.Item].
type catalogItem struct {
	item models.CatalogItem
}

func (i catalogItem) FilterValue() string { return i.item.Title }
func (i catalogItem) Title() string       { return i.item.Title }
func (i catalogItem) Description() string {
	desc := i.item.Artist
	if i.item.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.item.Description)
	}
	return desc
}
