// Package plansheet reads the weekly plan from an HTML table, typically a
// published spreadsheet.
package plansheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"menu-planner/internal/history"
	"menu-planner/internal/planner"
)

// ErrMissingColumn is returned when the plan table lacks a required column.
var ErrMissingColumn = errors.New("missing required plan column")

const (
	colDate          = "date"
	colHour          = "hour"
	colParticipants  = "participants"
	colTransportable = "transportable"
	colTime          = "time"
	colNutrition     = "nutrition"
)

// headerAliases maps a normalised header label to its column.
var headerAliases = map[string]string{
	"date":          colDate,
	"jour":          colDate,
	"heure":         colHour,
	"hour":          colHour,
	"participants":  colParticipants,
	"convives":      colParticipants,
	"transportable": colTransportable,
	"à emporter":    colTransportable,
	"temps":         colTime,
	"time":          colTime,
	"nutrition":     colNutrition,
}

var requiredColumns = []string{colDate, colParticipants}

// Sheet is a parsed plan.
type Sheet struct {
	Slots       []planner.Slot
	Diagnostics int
}

// Loader fetches plans from URLs or local files.
type Loader struct {
	client *http.Client
	logger *zap.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// Load reads the plan at src, an http(s) URL or a file path.
func (l *Loader) Load(ctx context.Context, src string) (*Sheet, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return l.fetch(ctx, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan %s: %w", src, err)
	}
	defer f.Close()
	return Parse(f, l.logger)
}

func (l *Loader) fetch(ctx context.Context, url string) (*Sheet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch plan: status %d", resp.StatusCode)
	}
	return Parse(resp.Body, l.logger)
}

// Parse reads the first table holding a date column. Rows whose values cannot
// be read are kept with the value treated as absent, except for rows without
// a usable date, which are skipped. Each such problem counts as a diagnostic.
func Parse(r io.Reader, logger *zap.Logger) (*Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan html: %w", err)
	}

	var (
		rows    [][]string
		columns map[string]int
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows = tableRows(table)
		for i, row := range rows {
			if cols := headerColumns(row); cols != nil {
				columns = cols
				rows = rows[i+1:]
				return false
			}
		}
		return true
	})
	if columns == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, colDate)
	}
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	sheet := &Sheet{}
	for i, row := range rows {
		p := rowParser{row: row, columns: columns, line: i + 1, logger: logger}
		slot, ok := p.slot()
		sheet.Diagnostics += p.diagnostics
		if ok {
			sheet.Slots = append(sheet.Slots, slot)
		}
	}

	logger.Info("Plan loaded",
		zap.Int("slots", len(sheet.Slots)),
		zap.Int("diagnostics", sheet.Diagnostics))
	return sheet, nil
}

func tableRows(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		rows = append(rows, cells)
	})
	return rows
}

// headerColumns returns the column positions when row is a header row.
func headerColumns(row []string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range row {
		if col, ok := headerAliases[normalize(cell)]; ok {
			if _, dup := cols[col]; !dup {
				cols[col] = i
			}
		}
	}
	if _, ok := cols[colDate]; !ok {
		return nil
	}
	return cols
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

type rowParser struct {
	row         []string
	columns     map[string]int
	line        int
	logger      *zap.Logger
	diagnostics int
}

func (p *rowParser) cell(col string) string {
	i, ok := p.columns[col]
	if !ok || i >= len(p.row) {
		return ""
	}
	return p.row[i]
}

func (p *rowParser) warn(col, value string, err error) {
	p.diagnostics++
	p.logger.Warn("Unreadable plan value",
		zap.Int("row", p.line),
		zap.String("column", col),
		zap.String("value", value),
		zap.Error(err))
}

func (p *rowParser) slot() (planner.Slot, bool) {
	rawDate := p.cell(colDate)
	participants := p.cell(colParticipants)
	if rawDate == "" && participants == "" {
		return planner.Slot{}, false
	}

	at, err := history.ParseDate(rawDate)
	if err != nil {
		p.warn(colDate, rawDate, err)
		return planner.Slot{}, false
	}
	if hour := p.cell(colHour); hour != "" {
		clock := strings.ReplaceAll(strings.ToLower(hour), "h", ":")
		if strings.HasSuffix(clock, ":") {
			clock += "00"
		}
		if h, err := time.Parse("15:04", clock); err == nil {
			at = time.Date(at.Year(), at.Month(), at.Day(), h.Hour(), h.Minute(), 0, 0, at.Location())
		} else {
			p.warn(colHour, hour, err)
		}
	}

	slot := planner.Slot{At: at, Participants: participants}
	slot.Transportable = p.flag(colTransportable)
	slot.Time = p.timeTier()
	slot.Nutrition = p.nutrition()
	return slot, true
}

func (p *rowParser) flag(col string) bool {
	raw := p.cell(col)
	switch normalize(raw) {
	case "", "non", "no", "false", "0", "-":
		return false
	case "oui", "yes", "true", "1", "x", "✓":
		return true
	}
	p.warn(col, raw, errors.New("not a yes/no value"))
	return false
}

func (p *rowParser) timeTier() planner.TimeTier {
	raw := p.cell(colTime)
	switch normalize(raw) {
	case "":
		return planner.TimeAny
	case "express":
		return planner.TimeExpress
	case "rapide", "quick":
		return planner.TimeQuick
	}
	p.warn(colTime, raw, errors.New("unknown time tier"))
	return planner.TimeAny
}

func (p *rowParser) nutrition() planner.NutritionTier {
	raw := p.cell(colNutrition)
	switch normalize(raw) {
	case "":
		return planner.NutritionAny
	case "équilibré", "equilibre", "balanced":
		return planner.NutritionBalanced
	}
	p.warn(colNutrition, raw, errors.New("unknown nutrition tier"))
	return planner.NutritionAny
}
