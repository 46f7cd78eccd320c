package http

import "github.com/mrlokans/library-manager/internal/library"

// Chart geometry, in SVG user units.
const (
	chartHeight      = 320
	chartMarginLeft  = 40
	chartMarginRight = 20
	chartMarginTop   = 24
	chartLabelSpace  = 56 // genre labels and axis title below the baseline
	chartSlotWidth   = 90
	chartMinWidth    = 320
)

// chartBar is one genre bar with its precomputed coordinates.
type chartBar struct {
	Label   string
	Count   int
	X, Y    int
	Width   int
	Height  int
	CenterX int
	ValueY  int
	LabelY  int
}

// genreChart is a vertical bar chart of books per genre rendered as SVG.
type genreChart struct {
	Width, Height int
	Left, Right   int
	Baseline      int
	CenterX       int
	Bars          []chartBar
}

func buildGenreChart(genres []library.GenreCount) genreChart {
	width := chartMarginLeft + chartMarginRight + len(genres)*chartSlotWidth
	if width < chartMinWidth {
		width = chartMinWidth
	}

	chart := genreChart{
		Width:    width,
		Height:   chartHeight,
		Left:     chartMarginLeft,
		Right:    width - chartMarginRight,
		Baseline: chartHeight - chartLabelSpace,
		CenterX:  width / 2,
		Bars:     make([]chartBar, 0, len(genres)),
	}

	maxCount := 0
	for _, g := range genres {
		if g.Count > maxCount {
			maxCount = g.Count
		}
	}
	if maxCount == 0 {
		return chart
	}

	plotHeight := chart.Baseline - chartMarginTop
	barWidth := chartSlotWidth * 2 / 3
	for i, g := range genres {
		h := g.Count * plotHeight / maxCount
		x := chartMarginLeft + i*chartSlotWidth + (chartSlotWidth-barWidth)/2
		chart.Bars = append(chart.Bars, chartBar{
			Label:   g.Genre,
			Count:   g.Count,
			X:       x,
			Y:       chart.Baseline - h,
			Width:   barWidth,
			Height:  h,
			CenterX: x + barWidth/2,
			ValueY:  chart.Baseline - h - 6,
			LabelY:  chart.Baseline + 18,
		})
	}
	return chart
}
