package viz

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"social-sentiment/src/analysis"
)

// FileReport is the interactive report written next to the PNG charts.
const FileReport = "report.html"

// PageOptions selects what goes onto the interactive page.
type PageOptions struct {
	Title string
	// Detailed adds the hourly and platform charts. The dashboard leaves it off.
	Detailed      bool
	MaxSentiments int
	MaxWords      int
}

// BuildPage assembles the echarts page for res. The classification report is
// not part of the page; RenderPage appends it.
func BuildPage(res *analysis.Result, o PageOptions) *components.Page {
	if o.MaxWords <= 0 {
		o.MaxWords = 100
	}
	sentiments := topSentiments(res.Sentiments, o.MaxSentiments)

	page := components.NewPage()
	if o.Title != "" {
		page.PageTitle = o.Title
	}
	page.AddCharts(sentimentBar(res, o.MaxSentiments), dailyLine(res, sentiments))
	if o.Detailed {
		page.AddCharts(hourlyLine(res, sentiments), platformStack(res, sentiments))
	}
	page.AddCharts(hashtagCloud(res, o.MaxWords))
	return page
}

// RenderPage writes the page followed by a preformatted classification
// report block.
func RenderPage(w io.Writer, res *analysis.Result, o PageOptions) error {
	var buf bytes.Buffer
	if err := BuildPage(res, o).Render(&buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	block := fmt.Sprintf("<h3>Classification report</h3>\n<p>accuracy %.4f</p>\n<pre>%s</pre>\n",
		res.Report.Accuracy, html.EscapeString(res.Report.String()))

	out := buf.String()
	if i := strings.LastIndex(out, "</body>"); i >= 0 {
		out = out[:i] + block + out[i:]
	} else {
		out += block
	}
	_, err := io.WriteString(w, out)
	return err
}

func sentimentBar(res *analysis.Result, limit int) *charts.Bar {
	counts := res.Sentiments
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	names := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		names[i] = c.Label
		data[i] = opts.BarData{Value: c.Count}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sentiment counts"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"}}),
	)
	bar.SetXAxis(names).AddSeries("posts", data)
	return bar
}

func dailyLine(res *analysis.Result, sentiments []string) *charts.Line {
	days := make([]string, len(res.Daily.Keys))
	for i, d := range res.Daily.Keys {
		days[i] = d.Format("2006-01-02")
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sentiment by date"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll", Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(days)
	for _, s := range sentiments {
		line.AddSeries(s, lineData(res.Daily.Series(s)))
	}
	return line
}

func hourlyLine(res *analysis.Result, sentiments []string) *charts.Line {
	hours := make([]string, len(res.Hourly.Keys))
	for i, h := range res.Hourly.Keys {
		hours[i] = fmt.Sprintf("%02d", h)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sentiment by hour of day"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll", Top: "bottom"}),
	)
	line.SetXAxis(hours)
	for _, s := range sentiments {
		line.AddSeries(s, lineData(res.Hourly.Series(s)))
	}
	return line
}

func lineData(series []int) []opts.LineData {
	data := make([]opts.LineData, len(series))
	for i, v := range series {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func platformStack(res *analysis.Result, sentiments []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sentiment by platform"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll", Top: "bottom"}),
	)
	bar.SetXAxis(res.Platforms.Keys)
	for _, s := range sentiments {
		series := res.Platforms.Series(s)
		data := make([]opts.BarData, len(series))
		for i, v := range series {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s, data, charts.WithBarChartOpts(opts.BarChart{Stack: "sentiment"}))
	}
	return bar
}

func hashtagCloud(res *analysis.Result, limit int) *charts.WordCloud {
	counts := res.Hashtags
	if len(counts) > limit {
		counts = counts[:limit]
	}
	data := make([]opts.WordCloudData, len(counts))
	for i, c := range counts {
		data[i] = opts.WordCloudData{Name: c.Token, Value: c.Count}
	}
	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Hashtags"}))
	wc.AddSeries("hashtags", data).
		SetSeriesOptions(charts.WithWorldCloudChartOpts(opts.WordCloudChart{
			SizeRange: []float32{12, 64},
			Shape:     "circle",
		}))
	return wc
}
