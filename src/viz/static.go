package viz

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"social-sentiment/src/analysis"
	"social-sentiment/src/ml"
	"social-sentiment/src/pipeline"
)

// Chart file names written by WriteStatic.
const (
	FileSentiments = "sentiment_counts.png"
	FileHourly     = "hourly_sentiment.png"
	FileDaily      = "daily_sentiment.png"
	FilePlatforms  = "platform_sentiment.png"
	FileWordCloud  = "hashtag_wordcloud.png"
	FileConfusion  = "confusion_matrix.png"
)

// StaticOptions sizes the PNG charts.
type StaticOptions struct {
	Width  vg.Length
	Height vg.Length
	// MaxSentiments limits bars and lines to the most frequent sentiments. Zero keeps all.
	MaxSentiments int
	WordCloud     WordCloudOptions
}

func (o StaticOptions) withDefaults() StaticOptions {
	if o.Width <= 0 {
		o.Width = 10 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 5 * vg.Inch
	}
	return o
}

// WriteStatic renders every PNG chart of res into dir and returns the paths
// in render order. Rendering stops at the first failure; files already
// written stay on disk.
func WriteStatic(res *analysis.Result, dir string, opts StaticOptions) ([]string, error) {
	opts = opts.withDefaults()
	sentiments := topSentiments(res.Sentiments, opts.MaxSentiments)

	steps := []struct {
		file  string
		build func() (*plot.Plot, error)
	}{
		{FileSentiments, func() (*plot.Plot, error) { return SentimentBar(res.Sentiments, opts.MaxSentiments) }},
		{FileHourly, func() (*plot.Plot, error) { return HourlyLines(res.Hourly, sentiments) }},
		{FileDaily, func() (*plot.Plot, error) { return DailyLines(res.Daily, sentiments) }},
		{FilePlatforms, func() (*plot.Plot, error) { return PlatformStack(res.Platforms, sentiments) }},
		{FileWordCloud, func() (*plot.Plot, error) { return WordCloud(res.Hashtags, res.Bands, opts.WordCloud) }},
		{FileConfusion, func() (*plot.Plot, error) { return ConfusionGrid(res.Report.Confusion) }},
	}

	var written []string
	for _, s := range steps {
		p, err := s.build()
		if err != nil {
			return written, fmt.Errorf("chart %s: %w", s.file, err)
		}
		path := filepath.Join(dir, s.file)
		w, h := opts.Width, opts.Height
		switch s.file {
		case FileWordCloud:
			wc := opts.WordCloud.withDefaults()
			w, h = vg.Points(wc.Width), vg.Points(wc.Height)
		case FileConfusion:
			h = w
		}
		if err := p.Save(w, h, path); err != nil {
			return written, fmt.Errorf("save %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func topSentiments(counts []pipeline.LabelCount, n int) []string {
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Label
	}
	return out
}

// SentimentBar is a bar chart of sentiment counts, most frequent first.
func SentimentBar(counts []pipeline.LabelCount, limit int) (*plot.Plot, error) {
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	p := plot.New()
	p.Title.Text = "Sentiment counts"
	p.Y.Label.Text = "posts"

	values := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Count)
		names[i] = c.Label
	}
	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	rotateX(p)
	return p, nil
}

// HourlyLines draws one line per sentiment over the hour of day.
func HourlyLines(g pipeline.GroupedCount[int], sentiments []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sentiment by hour of day"
	p.X.Label.Text = "hour"
	p.Y.Label.Text = "posts"
	p.X.Min, p.X.Max = 0, 23

	for i, s := range sentiments {
		series := g.Series(s)
		xys := make(plotter.XYs, len(g.Keys))
		for k, hour := range g.Keys {
			xys[k] = plotter.XY{X: float64(hour), Y: float64(series[k])}
		}
		if err := addLine(p, i, s, xys); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DailyLines draws one line per sentiment over calendar dates.
func DailyLines(g pipeline.GroupedCount[time.Time], sentiments []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sentiment by date"
	p.Y.Label.Text = "posts"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	for i, s := range sentiments {
		series := g.Series(s)
		xys := make(plotter.XYs, len(g.Keys))
		for k, day := range g.Keys {
			xys[k] = plotter.XY{X: float64(day.Unix()), Y: float64(series[k])}
		}
		if err := addLine(p, i, s, xys); err != nil {
			return nil, err
		}
	}
	rotateX(p)
	return p, nil
}

func addLine(p *plot.Plot, i int, name string, xys plotter.XYs) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("line %s: %w", name, err)
	}
	l.Color = plotutil.Color(i)
	l.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
	p.Add(l)
	p.Legend.Add(name, l)
	return nil
}

// PlatformStack stacks sentiment counts per platform.
func PlatformStack(g pipeline.GroupedCount[string], sentiments []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sentiment by platform"
	p.Y.Label.Text = "posts"

	var below *plotter.BarChart
	for i, s := range sentiments {
		series := g.Series(s)
		values := make(plotter.Values, len(series))
		for k, v := range series {
			values[k] = float64(v)
		}
		bars, err := plotter.NewBarChart(values, vg.Points(30))
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars
		p.Add(bars)
		p.Legend.Add(s, bars)
	}
	p.Legend.Top = true
	p.NominalX(g.Keys...)
	return p, nil
}

// confusionGrid adapts a confusion matrix to plotter.GridXYZ. Row 0 of the
// matrix is drawn at the top.
type confusionGrid struct {
	m ml.ConfusionMatrix
}

func (g confusionGrid) Dims() (c, r int) { return len(g.m.Labels), len(g.m.Labels) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.m.Counts[len(g.m.Labels)-1-r][c])
}
func (g confusionGrid) X(c int) float64 { return float64(c) }
func (g confusionGrid) Y(r int) float64 { return float64(r) }

// ConfusionGrid draws the confusion matrix as a heat grid with the count
// printed in every cell. Rows are true labels, columns predictions.
func ConfusionGrid(cm ml.ConfusionMatrix) (*plot.Plot, error) {
	n := len(cm.Labels)
	if n == 0 {
		return nil, fmt.Errorf("empty confusion matrix")
	}
	grid := confusionGrid{m: cm}
	heat := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if heat.Max == heat.Min {
		heat.Max = heat.Min + 1
	}

	p := plot.New()
	p.Title.Text = "Confusion matrix"
	p.X.Label.Text = "predicted"
	p.Y.Label.Text = "true"
	p.Add(heat)

	xys := make(plotter.XYs, 0, n*n)
	texts := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			texts = append(texts, fmt.Sprintf("%d", int(grid.Z(c, r))))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	rows := make([]string, n)
	for i, l := range cm.Labels {
		rows[n-1-i] = l
	}
	p.NominalX(cm.Labels...)
	p.NominalY(rows...)
	rotateX(p)
	return p, nil
}

func rotateX(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}
