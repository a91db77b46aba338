package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

// ImportConfig defines the starter vocabulary import configuration
type ImportConfig struct {
	FilePath      string // Path to the Excel or CSV file
	WordColumn    int    // Zero-based column with the word
	MeaningColumn int    // Zero-based column with the English meaning
	ContextColumn int    // Zero-based column with an example sentence (optional)
	SheetName     string // Name of the sheet to import
	StartRow      int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(filePath string) ImportConfig {
	return ImportConfig{
		FilePath:      filePath,
		WordColumn:    0,
		MeaningColumn: 1,
		ContextColumn: 2,
		SheetName:     "Sheet1",
		StartRow:      2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Added          int
	Skipped        int
	Errors         []string
}

// ImportWords merges starter vocabulary from an Excel or CSV file into
// the word exposure log. Words already present are skipped, never
// overwritten.
func ImportWords(docs *database.DocumentStore, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var rows [][]string
	var err error
	if ext == ".csv" {
		rows, err = readCSVRows(config.FilePath)
	} else {
		rows, err = readExcelRows(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}}

	var words models.Words
	err = docs.Update(database.KeyWords, models.DefaultWords(), &words, func() error {
		known := make(map[string]bool, len(words.All))
		for _, entry := range words.All {
			known[strings.ToLower(entry.Word)] = true
		}

		for i, row := range rows {
			if i < config.StartRow-1 {
				continue
			}
			result.TotalProcessed++

			entry, rowErr := parseRow(row, config)
			if rowErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, rowErr))
				continue
			}
			if known[strings.ToLower(entry.Word)] {
				result.Skipped++
				continue
			}
			known[strings.ToLower(entry.Word)] = true
			words.All = append(words.All, entry)
			result.Added++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update words: %v", err)
	}
	return result, nil
}

func parseRow(row []string, config ImportConfig) (models.WordEntry, error) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	entry := models.WordEntry{
		Word:    cell(config.WordColumn),
		Meaning: cell(config.MeaningColumn),
		Context: cell(config.ContextColumn),
	}
	if entry.Word == "" {
		return entry, fmt.Errorf("empty word")
	}
	if entry.Meaning == "" {
		return entry, fmt.Errorf("empty meaning for word %q", entry.Word)
	}
	return entry, nil
}

func readExcelRows(filePath, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSVRows(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
