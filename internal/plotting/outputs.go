package plotting

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lilacgalaxy/vts-face-tracker/internal/fsutil"
	"github.com/lilacgalaxy/vts-face-tracker/internal/storage/sqlite"
)

// OutputChart builds a line chart with one line per output identifier over
// the union of recorded timestamps. Timestamps a series lacks are gaps.
func OutputChart(series []sqlite.Series, title, subtitle string) *charts.Line {
	var stamps []int64
	for _, s := range series {
		for _, smp := range s.Samples {
			stamps = append(stamps, smp.Timestamp)
		}
	}
	slices.Sort(stamps)
	stamps = slices.Compact(stamps)

	x := make([]string, len(stamps))
	column := make(map[int64]int, len(stamps))
	for i, ts := range stamps {
		x[i] = strconv.FormatInt(ts, 10)
		column[ts] = i
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "timestamp (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(x)

	for _, s := range series {
		data := make([]opts.LineData, len(stamps))
		for i := range data {
			data[i] = opts.LineData{Value: "-"}
		}
		for _, smp := range s.Samples {
			data[column[smp.Timestamp]] = opts.LineData{Value: smp.Value}
		}
		line.AddSeries(s.ID, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

// WriteOutputChart renders the chart as a standalone HTML page.
func WriteOutputChart(w io.Writer, series []sqlite.Series, title, subtitle string) error {
	if err := OutputChart(series, title, subtitle).Render(w); err != nil {
		return fmt.Errorf("render output chart: %w", err)
	}
	return nil
}

// SaveOutputChart writes the chart page to path.
func SaveOutputChart(fsys fsutil.FileSystem, path string, series []sqlite.Series, title, subtitle string) error {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteOutputChart(f, series, title, subtitle); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
