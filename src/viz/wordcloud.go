package viz

import (
	"fmt"
	"math"
	"unicode/utf8"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"social-sentiment/src/pipeline"
)

// WordCloudOptions controls the word cloud layout. Sizes are in points.
type WordCloudOptions struct {
	Width    float64
	Height   float64
	MaxWords int
	MinFont  float64
	MaxFont  float64
}

func (o WordCloudOptions) withDefaults() WordCloudOptions {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	if o.MaxWords <= 0 {
		o.MaxWords = 100
	}
	if o.MinFont <= 0 {
		o.MinFont = 8
	}
	if o.MaxFont <= o.MinFont {
		o.MaxFont = o.MinFont * 6
	}
	return o
}

// Placement is one positioned word. X and Y are the centre of the word.
type Placement struct {
	Word string
	Size float64
	X, Y float64
	Band int
}

type box struct{ x0, y0, x1, y1 float64 }

func (b box) overlaps(o box) bool {
	return b.x0 < o.x1 && o.x0 < b.x1 && b.y0 < o.y1 && o.y0 < b.y1
}

// charWidth is the average glyph advance relative to the font size.
const charWidth = 0.6

// Layout places words along an Archimedean spiral from the centre outwards,
// largest first. Words that fit nowhere inside the canvas are left out.
// counts must already be ordered by descending count.
func Layout(counts []pipeline.TokenCount, bands pipeline.FrequencyBands, opts WordCloudOptions) []Placement {
	opts = opts.withDefaults()
	if len(counts) > opts.MaxWords {
		counts = counts[:opts.MaxWords]
	}
	if len(counts) == 0 {
		return nil
	}
	hi, lo := float64(counts[0].Count), float64(counts[len(counts)-1].Count)

	cx, cy := opts.Width/2, opts.Height/2
	step := math.Max(opts.Width, opts.Height) / 2000
	var placed []box
	var out []Placement
	for _, c := range counts {
		size := opts.MaxFont
		if hi > lo {
			size = opts.MinFont + (opts.MaxFont-opts.MinFont)*math.Sqrt((float64(c.Count)-lo)/(hi-lo))
		}
		w := charWidth * size * float64(utf8.RuneCountInString(c.Token))
		h := size

		for theta := 0.0; ; theta += 0.1 {
			r := step * 10 * theta
			if r > math.Hypot(cx, cy) {
				break
			}
			x := cx + r*math.Cos(theta)
			y := cy + r*math.Sin(theta)
			b := box{x - w/2, y - h/2, x + w/2, y + h/2}
			if b.x0 < 0 || b.y0 < 0 || b.x1 > opts.Width || b.y1 > opts.Height {
				continue
			}
			free := true
			for _, p := range placed {
				if b.overlaps(p) {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			placed = append(placed, b)
			out = append(out, Placement{Word: c.Token, Size: size, X: x, Y: y, Band: bands.BandOf(c.Token)})
			break
		}
	}
	return out
}

// WordCloud renders the hashtag frequencies as a word cloud. Font size
// follows the count, colour the frequency band.
func WordCloud(counts []pipeline.TokenCount, bands pipeline.FrequencyBands, opts WordCloudOptions) (*plot.Plot, error) {
	opts = opts.withDefaults()
	placements := Layout(counts, bands, opts)
	if len(placements) == 0 {
		return nil, fmt.Errorf("no hashtags to draw")
	}

	p := plot.New()
	p.Title.Text = "Hashtags"
	p.HideAxes()
	p.X.Min, p.X.Max = 0, opts.Width
	p.Y.Min, p.Y.Max = 0, opts.Height

	xys := make(plotter.XYs, len(placements))
	words := make([]string, len(placements))
	for i, pl := range placements {
		xys[i] = plotter.XY{X: pl.X, Y: pl.Y}
		words[i] = pl.Word
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: words})
	if err != nil {
		return nil, err
	}
	for i, pl := range placements {
		style := &labels.TextStyle[i]
		style.Font.Size = vg.Points(pl.Size)
		style.XAlign = draw.XCenter
		style.YAlign = draw.YCenter
		band := pl.Band
		if band < 0 {
			band = len(bands)
		}
		style.Color = plotutil.Color(band)
	}
	p.Add(labels)
	return p, nil
}
