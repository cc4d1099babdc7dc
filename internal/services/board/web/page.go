package web

import (
	"github.com/a-h/templ"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats holds the localized status lines shown next to the board.
type Stats struct {
	Paths string `json:"paths"`
	Speed string `json:"speed"`
	Batch string `json:"batch"`
	Mean  string `json:"mean"`
}

// NewStats formats snap for printer's locale.
func NewStats(printer *message.Printer, snap domain.Snapshot) Stats {
	return Stats{
		Paths: printer.Sprintf("Paths: %d", snap.TotalPaths()),
		Speed: printer.Sprintf("Speed: %.2f updates/s", snap.Rate),
		Batch: printer.Sprintf("Batch: %d paths", snap.BatchSize),
		Mean:  printer.Sprintf("Mean bin: %.2f", snap.Histogram().Mean()),
	}
}

// pageView is the data the page template renders.
type pageView struct {
	Lang     string
	Title    string
	Stats    Stats
	Rate     string
	SetSpeed string
	Reset    string
	Board    domain.Snapshot
}

// Page renders the full HTML page around the board.
func Page(tag language.Tag, snap domain.Snapshot) templ.Component {
	printer := Printer(tag)
	return pageDocument(pageView{
		Lang:     tag.String(),
		Title:    printer.Sprintf("Bean machine"),
		Stats:    NewStats(printer, snap),
		Rate:     px(snap.Rate),
		SetSpeed: printer.Sprintf("Set speed"),
		Reset:    printer.Sprintf("Reset"),
		Board:    snap,
	})
}
