// Package ingest implements the one-shot symbol ingestion job: read exchange
// CSV exports, deduplicate, and write the canonical symbol set to the store
// and the flat snapshot file.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/models"
)

// Exchange export column headers, as shipped in the NSE symbol lists.
const (
	headerSymbol      = "Symbol"
	headerCompanyName = "Company Name"
	headerIndustry    = "Industry"
	headerISIN        = "ISIN Code"
)

// CSVSource reads every *.csv file in a directory of exchange exports.
type CSVSource struct {
	dir    string
	logger *common.Logger
}

// NewCSVSource creates a source over the given exports directory.
func NewCSVSource(logger *common.Logger, dir string) *CSVSource {
	return &CSVSource{dir: dir, logger: logger}
}

// Load concatenates the rows of every CSV file in the directory. Files are
// visited in name order; rows keep their per-file order.
func (s *CSVSource) Load() ([]*models.SymbolRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read exports directory %s: %w", s.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(s.dir, entry.Name()))
		}
	}
	sort.Strings(files)

	var combined []*models.SymbolRecord
	for _, path := range files {
		records, err := s.loadFile(path)
		if err != nil {
			return nil, err
		}
		s.logger.Debug().Str("file", path).Int("rows", len(records)).Msg("Export file loaded")
		combined = append(combined, records...)
	}

	s.logger.Info().Int("files", len(files)).Int("rows", len(combined)).Msg("Exchange exports loaded")
	return combined, nil
}

func (s *CSVSource) loadFile(path string) ([]*models.SymbolRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse export file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Map header names to column positions; exports occasionally reorder columns.
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{headerSymbol, headerCompanyName, headerIndustry, headerISIN} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("export file %s is missing column %q", path, required)
		}
	}

	records := make([]*models.SymbolRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, &models.SymbolRecord{
			Symbol:      row[cols[headerSymbol]],
			CompanyName: row[cols[headerCompanyName]],
			Industry:    row[cols[headerIndustry]],
			ISIN:        row[cols[headerISIN]],
		})
	}
	return records, nil
}
