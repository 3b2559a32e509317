package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"CorrScope/internal/domain/models"
	"CorrScope/pkg/util"
)

// FredMDSource serves monthly macro series from the wide FRED-MD CSV: first
// column is the observation date, every other column is one series id. The
// file is parsed once and held in memory.
type FredMDSource struct {
	path string

	once    sync.Once
	loadErr error
	series  map[string]models.Series
	ids     []string
}

// NewFredMDSource creates a FRED-MD source for <dir>/fred_md.csv.
func NewFredMDSource(dir string) *FredMDSource {
	return &FredMDSource{path: filepath.Join(dir, "fred_md.csv")}
}

func (s *FredMDSource) Load(_ context.Context, symbol string) (models.Series, error) {
	if err := s.ensure(); err != nil {
		return models.Series{}, err
	}
	id := strings.ToUpper(strings.TrimSpace(symbol))
	series, ok := s.series[id]
	if !ok {
		return models.Series{}, fmt.Errorf("fred-md %s: %w", id, models.ErrSeriesNotFound)
	}
	return series, nil
}

// SeriesIDs returns all series ids present in the dataset.
func (s *FredMDSource) SeriesIDs() ([]string, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.ids, nil
}

func (s *FredMDSource) ensure() error {
	s.once.Do(func() { s.loadErr = s.parse() })
	return s.loadErr
}

func (s *FredMDSource) parse() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("fred-md dataset %s: %w", s.path, models.ErrSeriesNotFound)
		}
		return fmt.Errorf("open fred-md: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("fred-md header: %w", err)
	}
	if len(header) < 2 {
		return fmt.Errorf("fred-md header too short")
	}

	ids := make([]string, 0, len(header)-1)
	cols := make([][]models.Point, len(header)-1)
	for i, id := range header[1:] {
		ids = append(ids, strings.ToUpper(strings.TrimSpace(id)))
		cols[i] = nil
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("fred-md row: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		date, ok := util.ParseDate(strings.TrimSpace(rec[0]))
		if !ok {
			continue // the transform-code row below the header, or junk
		}
		for i := 1; i < len(rec) && i < len(header); i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil || math.IsNaN(v) {
				continue // missing observation
			}
			cols[i-1] = append(cols[i-1], models.Point{Date: date, Value: v})
		}
	}

	s.series = make(map[string]models.Series, len(ids))
	validIDs := make([]string, 0, len(ids))
	for i, id := range ids {
		if id == "" || len(cols[i]) == 0 {
			continue
		}
		s.series[id] = models.Series{Symbol: id, Points: cols[i]}
		validIDs = append(validIDs, id)
	}
	s.ids = validIDs
	return nil
}
