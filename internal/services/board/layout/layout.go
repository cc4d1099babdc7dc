// Package layout places pins, edges and histogram bars on the board canvas.
package layout

const (
	Width       = 1920.0
	Height      = 1080.0
	PinRadius   = 7.0
	PinInterval = 40.0
	PinsStartY  = PinInterval
	// LineWidth is the stroke width of an edge between pins.
	LineWidth = 3.0
	// BarWidth is the width of one histogram bar.
	BarWidth = PinInterval / 2
)

// Point is a canvas position in pixels.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned canvas rectangle.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Pin returns the center of pin in row. Row rowCount holds the bin
// positions under the last row of pins.
func Pin(row, pin int) Point {
	return Point{
		X: Width/2 - (float64(row)/2)*PinInterval + float64(pin)*PinInterval,
		Y: PinInterval*float64(row) + PinsStartY,
	}
}

// Edge returns the endpoints of the edge from (row, pin) to toPin in the
// next row.
func Edge(row, pin, toPin int) (Point, Point) {
	return Pin(row, pin), Pin(row+1, toPin)
}

// HistogramTop is the highest point a bar may reach.
func HistogramTop(rowCount int) float64 {
	return PinsStartY + float64(rowCount)*PinInterval
}

// HistogramBase is the baseline the bars grow up from.
func HistogramBase() float64 {
	return Height - PinInterval
}

// Bar returns the rectangle of bin for a normalized height in [0, 1].
func Bar(rowCount, bin int, height float64) Rect {
	if height < 0 {
		height = 0
	}
	if height > 1 {
		height = 1
	}
	base := HistogramBase()
	maxHeight := base - HistogramTop(rowCount)
	if maxHeight < 0 {
		maxHeight = 0
	}
	h := height * maxHeight
	center := Pin(rowCount, bin).X
	return Rect{
		X:      center - BarWidth/2,
		Y:      base - h,
		Width:  BarWidth,
		Height: h,
	}
}
