// Package view turns store state into what the meters table shows.
package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/pagination"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/store"
)

const (
	LoadingAddress = "Loading..."
	EmptyNotes     = "-"

	ColdWaterTag = "ColdWaterAreaMeter"
	HotWaterTag  = "HotWaterAreaMeter"
)

// TypeLabel is the icon and caption of the type column. Icon is empty for
// unrecognised tag sets.
type TypeLabel struct {
	Icon  string `json:"icon,omitempty"`
	Label string `json:"label"`
}

type Row struct {
	Number    int       `json:"number"`
	ID        string    `json:"id"`
	Type      TypeLabel `json:"type"`
	Installed string    `json:"installed"`
	Automatic string    `json:"automatic"`
	Readings  string    `json:"readings"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
}

type Page struct {
	Title       string              `json:"title"`
	Rows        []Row               `json:"rows"`
	Buttons     []pagination.Button `json:"buttons"`
	Cursor      pagination.Cursor   `json:"cursor"`
	CurrentPage int                 `json:"current_page"`
	TotalPages  int                 `json:"total_pages"`
	Error       string              `json:"error,omitempty"`
}

// Build derives the table page from a store snapshot. The active page always comes
// from the snapshot's offset.
func Build(st store.State) Page {
	current := st.Cursor.Page()
	total := st.Cursor.TotalPages()

	rows := make([]Row, 0, len(st.Meters))
	for i, m := range st.Meters {
		a, ok := st.Addresses[m.Area.ID]
		rows = append(rows, Row{
			Number:    st.Cursor.Offset + i + 1,
			ID:        m.ID,
			Type:      Type(m.Types),
			Installed: FormatDate(m.InstallationDate),
			Automatic: YesNo(m.IsAutomatic),
			Readings:  Readings(m.InitialValues),
			Address:   AddressLabel(a, ok),
			Notes:     Notes(m.Description),
		})
	}

	return Page{
		Title:       "Список счётчиков",
		Rows:        rows,
		Buttons:     pagination.Buttons(current, total),
		Cursor:      st.Cursor,
		CurrentPage: current,
		TotalPages:  total,
	}
}

// AddressLabel renders "<street>, кв. <unit>", or the loading placeholder while the
// address is unknown.
func AddressLabel(a domain.Address, ok bool) string {
	if !ok || a.House.Address == "" {
		return LoadingAddress
	}
	return a.House.Address + ", кв. " + a.StrNumber
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// FormatDate renders DD.MM.YY in the timestamp's own offset. Unparsable input is
// returned as is.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02.01.06")
		}
	}
	return s
}

func Type(tags []string) TypeLabel {
	for _, t := range tags {
		if t == ColdWaterTag {
			return TypeLabel{Icon: "cold-water", Label: "ХВС"}
		}
	}
	for _, t := range tags {
		if t == HotWaterTag {
			return TypeLabel{Icon: "hot-water", Label: "ГВС"}
		}
	}
	return TypeLabel{Label: strings.Join(tags, ", ")}
}

func YesNo(b bool) string {
	if b {
		return "Да"
	}
	return "Нет"
}

func Readings(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func Notes(description string) string {
	if description == "" {
		return EmptyNotes
	}
	return description
}
