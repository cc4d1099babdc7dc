package web

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/beanmachine/internal/core/stats"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"github.com/louisbranch/beanmachine/internal/services/board/layout"
)

const (
	backgroundColor = "rgb(0, 0, 0)"
	pinColor        = "rgb(200, 200, 200)"
	edgeColor       = "rgb(255, 255, 255)"
	pathColor       = "rgb(255, 51, 51)"
	barColor        = "rgb(90, 160, 255)"
	expectedColor   = "rgb(255, 200, 0)"
)

func px(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// BoardSVG renders the pins, weighted edges, latest path and histogram of
// snap as a standalone SVG document.
func BoardSVG(snap domain.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		rows := snap.RowCount()
		if _, err := fmt.Fprintf(w,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" data-generation="%d" data-total-paths="%d">`,
			px(layout.Width), px(layout.Height), snap.Generation, snap.TotalPaths()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<rect width="%s" height="%s" fill="%s"/>`,
			px(layout.Width), px(layout.Height), backgroundColor); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, `<g stroke="%s" stroke-width="%s">`, edgeColor, px(layout.LineWidth)); err != nil {
			return err
		}
		for _, segment := range snap.Segments() {
			if segment.Alpha <= 0 {
				continue
			}
			from, to := layout.Edge(segment.Row, segment.Pin, segment.ToPin)
			if err := line(w, from, to, segment.Alpha); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</g>`); err != nil {
			return err
		}

		if err := latestPath(w, snap); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, `<g fill="%s">`, pinColor); err != nil {
			return err
		}
		for row := 0; row < rows; row++ {
			for pin := 0; pin <= row; pin++ {
				center := layout.Pin(row, pin)
				if _, err := fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s"/>`,
					px(center.X), px(center.Y), px(layout.PinRadius)); err != nil {
					return err
				}
			}
		}
		if _, err := io.WriteString(w, `</g>`); err != nil {
			return err
		}

		if err := histogram(w, rows, snap.Histogram()); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</svg>`)
		return err
	})
}

func line(w io.Writer, from, to layout.Point, opacity float64) error {
	_, err := fmt.Fprintf(w, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke-opacity="%s"/>`,
		px(from.X), px(from.Y), px(to.X), px(to.Y), strconv.FormatFloat(opacity, 'f', 4, 64))
	return err
}

func latestPath(w io.Writer, snap domain.Snapshot) error {
	if snap.TotalPaths() == 0 {
		return nil
	}
	path := snap.LastPath()
	if _, err := fmt.Fprintf(w, `<g class="latest" stroke="%s" stroke-width="%s">`, pathColor, px(layout.LineWidth)); err != nil {
		return err
	}
	for row := range path {
		next := snap.LastBin
		if row+1 < len(path) {
			next = path[row+1]
		}
		if next < 0 {
			continue
		}
		from, to := layout.Edge(row, path[row], next)
		if err := line(w, from, to, 1); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</g>`)
	return err
}

func histogram(w io.Writer, rows int, h stats.Histogram) error {
	if _, err := fmt.Fprintf(w, `<g class="histogram" fill="%s">`, barColor); err != nil {
		return err
	}
	for bin, height := range h.Normalized() {
		bar := layout.Bar(rows, bin, height)
		if _, err := fmt.Fprintf(w, `<rect x="%s" y="%s" width="%s" height="%s"><title>%d</title></rect>`,
			px(bar.X), px(bar.Y), px(bar.Width), px(bar.Height), h.Bins[bin]); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `</g>`); err != nil {
		return err
	}
	if h.Max == 0 {
		return nil
	}

	points := ""
	for bin, expected := range stats.Expected(rows, h.Total()) {
		top := layout.Bar(rows, bin, expected/float64(h.Max))
		center := layout.Pin(rows, bin).X
		if bin > 0 {
			points += " "
		}
		points += px(center) + "," + px(top.Y)
	}
	_, err := fmt.Fprintf(w, `<polyline class="expected" fill="none" stroke="%s" stroke-width="2" points="%s"/>`,
		expectedColor, templ.EscapeString(points))
	return err
}
