// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheetsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/applicant-reviewer/apperr"
)

// XLSX reads spreadsheets from <dir>/<externalID>.xlsx. It is the offline
// stand-in for the Sheets API and reads the first worksheet.
type XLSX struct {
	dir string
}

func NewXLSX(dir string) *XLSX {
	return &XLSX{dir: dir}
}

func (x *XLSX) open(externalID string) (*excelize.File, error) {
	if !idPattern.MatchString(externalID) {
		return nil, apperr.New(apperr.InvalidInput, "Invalid spreadsheet id")
	}
	f, err := excelize.OpenFile(filepath.Join(x.dir, externalID+".xlsx"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Wrap(apperr.NotFound, errNotShared, err)
		}
		return nil, apperr.Wrap(apperr.SourceUnavailable, "Failed to open spreadsheet", err)
	}
	return f, nil
}

// Title returns the workbook's title property, or the id when unset.
func (x *XLSX) Title(ctx context.Context, externalID string) (string, error) {
	f, err := x.open(externalID)
	if err != nil {
		return "", err
	}
	defer f.Close()

	props, err := f.GetDocProps()
	if err == nil && props.Title != "" {
		return props.Title, nil
	}
	return externalID, nil
}

// Rows returns the first worksheet's rows limited to FullRange's columns.
func (x *XLSX) Rows(ctx context.Context, externalID string) ([][]string, error) {
	f, err := x.open(externalID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	list := f.GetSheetList()
	if len(list) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(list[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.SourceUnavailable, "Failed to read spreadsheet", fmt.Errorf("read %s: %w", list[0], err))
	}
	for i, r := range rows {
		if len(r) > maxColumns {
			rows[i] = r[:maxColumns]
		}
	}
	return rows, nil
}

// maxColumns matches the A:Z range of the Sheets API source.
const maxColumns = 26
