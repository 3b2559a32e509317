package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"CorrScope/internal/domain/models"
	applogger "CorrScope/pkg/logger"
	"CorrScope/pkg/util"
)

// FileSeriesSource reads per-symbol daily CSV files from the flat-file data
// store. Layout: <dir>/daily/<SYMBOL>.csv with a "date,adj_close" header.
type FileSeriesSource struct {
	dir string
	l   *applogger.Logger
}

// NewFileSeriesSource creates a flat-file series source rooted at dir.
func NewFileSeriesSource(dir string) *FileSeriesSource {
	return &FileSeriesSource{dir: dir}
}

// SetLogger injects a structured logger.
func (s *FileSeriesSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *FileSeriesSource) Load(_ context.Context, symbol string) (models.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	path := filepath.Join(s.dir, "daily", symbol+".csv")

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Series{}, fmt.Errorf("%s: %w", symbol, models.ErrSeriesNotFound)
		}
		return models.Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	series, err := readSeriesCSV(f, symbol)
	if err != nil {
		return models.Series{}, fmt.Errorf("read %s: %w", path, err)
	}
	if series.Empty() {
		return models.Series{}, fmt.Errorf("%s: empty file: %w", symbol, models.ErrSeriesNotFound)
	}
	if s.l != nil {
		s.l.Debug("series loaded",
			applogger.String("symbol", symbol),
			applogger.Int("points", series.Len()),
		)
	}
	return series, nil
}

// readSeriesCSV parses a two-column (date, value) CSV. The header row is
// detected and skipped; rows with unparseable fields are dropped.
func readSeriesCSV(r io.Reader, symbol string) (models.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var points []models.Point
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Series{}, err
		}
		if len(rec) < 2 {
			continue
		}
		date, ok := util.ParseDate(strings.TrimSpace(rec[0]))
		if !ok {
			continue // header or malformed row
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			continue
		}
		points = append(points, models.Point{Date: date, Value: value})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	// drop duplicate dates, keeping the last occurrence
	dedup := points[:0]
	for i, p := range points {
		if i+1 < len(points) && points[i+1].Date.Equal(p.Date) {
			continue
		}
		dedup = append(dedup, p)
	}
	return models.Series{Symbol: symbol, Points: dedup}, nil
}
