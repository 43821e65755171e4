package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/kjstillabower/solar-power-service/internal/chart"
	"github.com/kjstillabower/solar-power-service/internal/models"
	"github.com/kjstillabower/solar-power-service/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"num":    formatInput,
		"joules": report.FormatJoules,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// FieldView is one slider with its current value.
type FieldView struct {
	models.Field
	Value float64
}

// PageData is the model for index.html.
type PageData struct {
	Fields         []FieldView
	ModelAvailable bool
	InputError     string
	PredictError   string
	Result         *ResultView
}

// ResultView is shown only after a successful prediction.
type ResultView struct {
	Headline string
	Band     string
	Fact     string
	Bars     []SVGBar
	ChartURL string
	Export   []FieldView
	SVG      svgFrame
}

// SVGBar is one pre-computed rectangle of the inline chart.
type SVGBar struct {
	X, Y, W, H float64
	Color      string
	Label      string
	Value      string
	LabelY     float64
}

type svgFrame struct {
	Width, Height, Baseline float64
}

const (
	svgWidth  = 720.0
	svgHeight = 260.0
	svgPad    = 20.0
)

func (h *Handler) newPage(obs models.Observation) PageData {
	fields := make([]FieldView, models.FieldCount)
	for i, f := range models.Fields {
		fields[i] = FieldView{Field: f, Value: obs[i]}
	}
	return PageData{
		Fields:         fields,
		ModelAvailable: h.predictions.Available(),
	}
}

func newResultView(res report.Result) *ResultView {
	q := url.Values{}
	export := make([]FieldView, models.FieldCount)
	for i, f := range models.Fields {
		q.Set(f.Key, formatInput(res.Observation[i]))
		export[i] = FieldView{Field: f, Value: res.Observation[i]}
	}
	bars, frame := svgBars(res.Bars)
	return &ResultView{
		Headline: res.Prediction.Text(),
		Band:     res.Prediction.BandText(),
		Fact:     res.Fact,
		Bars:     bars,
		ChartURL: "/chart.png?" + q.Encode(),
		Export:   export,
		SVG:      frame,
	}
}

// svgBars lays out bars in a fixed frame with a zero baseline that moves up when
// any value is negative.
func svgBars(bars []report.Bar) ([]SVGBar, svgFrame) {
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	plotH := svgHeight - 2*svgPad
	scale := plotH / (hi - lo)
	baseline := svgPad + hi*scale
	slot := (svgWidth - 2*svgPad) / float64(len(bars))

	out := make([]SVGBar, len(bars))
	for i, b := range bars {
		hgt := math.Abs(b.Value) * scale
		y := baseline - hgt
		labelY := y - 4
		if b.Value < 0 {
			y = baseline
			labelY = baseline + hgt + 12
		}
		c := chart.Palette[i%len(chart.Palette)]
		out[i] = SVGBar{
			X:      svgPad + float64(i)*slot + slot*0.1,
			Y:      y,
			W:      slot * 0.8,
			H:      hgt,
			Color:  fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
			Label:  b.Label,
			Value:  formatInput(b.Value),
			LabelY: labelY,
		}
	}
	return out, svgFrame{Width: svgWidth, Height: svgHeight, Baseline: baseline}
}

// formatInput renders a slider value without trailing zeros.
func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page PageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", page); err != nil {
		loggerFrom(r, h.logger).Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
