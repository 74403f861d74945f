package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readExcelRecords extracts the first sheet of a workbook as raw records,
// padding ragged rows to the header width so they feed the same
// normalization path as CSV sources.
func readExcelRecords(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	width := len(rows[0])
	records := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		records[i] = padded
	}
	return records, nil
}
