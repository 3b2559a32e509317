package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"CorrScope/internal/domain/models"
)

// metadataFiles maps security type to its catalog file under the metadata
// directory. Missing files are tolerated so a deployment can carry any subset.
var metadataFiles = map[string]string{
	models.TypeStock: "stock_metadata.csv",
	models.TypeETF:   "etf_metadata.csv",
	models.TypeIndex: "index_metadata.csv",
	models.TypeFred:  "fred_metadata.csv",
}

// CSVMetadataStore loads the security catalog from per-type CSV files with a
// header row. Column names are matched case-insensitively; unknown columns
// are ignored.
type CSVMetadataStore struct {
	dir string

	once     sync.Once
	loadErr  error
	byType   map[string][]models.SecurityMeta
	bySymbol map[string]models.SecurityMeta
}

func NewCSVMetadataStore(dir string) *CSVMetadataStore {
	return &CSVMetadataStore{dir: dir}
}

func (s *CSVMetadataStore) List(_ context.Context, securityType string) ([]models.SecurityMeta, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s.byType[strings.ToLower(securityType)], nil
}

func (s *CSVMetadataStore) Get(_ context.Context, symbol string) (models.SecurityMeta, bool) {
	if err := s.ensure(); err != nil {
		return models.SecurityMeta{}, false
	}
	m, ok := s.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return m, ok
}

func (s *CSVMetadataStore) ensure() error {
	s.once.Do(func() {
		s.byType = make(map[string][]models.SecurityMeta)
		s.bySymbol = make(map[string]models.SecurityMeta)
		for typ, name := range metadataFiles {
			if err := s.loadFile(typ, filepath.Join(s.dir, name)); err != nil {
				s.loadErr = err
				return
			}
		}
	})
	return s.loadErr
}

func (s *CSVMetadataStore) loadFile(securityType, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open metadata %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("metadata header %s: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return models.CleanMetaField(rec[i])
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("metadata row %s: %w", path, err)
		}
		sym := strings.ToUpper(field(rec, "symbol"))
		if sym == "" {
			continue
		}
		m := models.SecurityMeta{
			Symbol:   sym,
			Name:     field(rec, "name"),
			Type:     securityType,
			Exchange: field(rec, "exchange"),
			Market:   field(rec, "market"),
			Sector:   field(rec, "sector"),
			Industry: field(rec, "industry"),
			Currency: field(rec, "currency"),
			Family:   field(rec, "family"),
		}
		s.byType[securityType] = append(s.byType[securityType], m)
		if _, dup := s.bySymbol[sym]; !dup {
			s.bySymbol[sym] = m
		}
	}
	return nil
}
