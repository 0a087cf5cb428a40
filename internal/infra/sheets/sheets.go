package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "stocks_coefs"

// TargetConfig identifies one Google Sheets destination.
type TargetConfig struct {
	ID              string `yaml:"id"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Target mirrors tariff tables into a fixed region of one spreadsheet.
// It implements syncer.Sink.
type Target struct {
	id            string
	spreadsheetID string
	sheetName     string
	svc           *sheetsapi.Service
}

// NewTarget builds a sheets client for one spreadsheet using a service
// account credentials file.
func NewTarget(ctx context.Context, cfg TargetConfig) (*Target, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service for target %s: %w", cfg.ID, err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	id := cfg.ID
	if id == "" {
		id = cfg.SpreadsheetID
	}

	return &Target{
		id:            id,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		svc:           svc,
	}, nil
}

// ID returns the opaque target identifier.
func (t *Target) ID() string { return t.id }

// WriteTable clears the sheet region and writes the table at A1. Clearing
// first guarantees stale rows never survive a shrink in row count.
func (t *Target) WriteTable(ctx context.Context, table [][]string) error {
	clearRange := fmt.Sprintf("%s!A1:Z", t.sheetName)
	_, err := t.svc.Spreadsheets.Values.
		Clear(t.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear range %s: %w", clearRange, err)
	}

	values := make([][]interface{}, len(table))
	for i, row := range table {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	writeRange := fmt.Sprintf("%s!A1", t.sheetName)
	_, err = t.svc.Spreadsheets.Values.
		Update(t.spreadsheetID, writeRange, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write %d rows to %s: %w", len(table), writeRange, err)
	}
	return nil
}
