// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"time"

	"pos_ledger/internal/a1"
	"pos_ledger/internal/sales"
)

// Store drivers.
const (
	DriverSheets   = "sheets"
	DriverWorkbook = "workbook"
	DriverMemory   = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8081".
	Addr string `koanf:"addr"`

	// StoreDriver selects the ledger backend: sheets, workbook or memory.
	StoreDriver string `koanf:"store_driver"`

	LedgerSpreadsheetID    string `koanf:"ledger_spreadsheet_id"`
	ReferenceSpreadsheetID string `koanf:"reference_spreadsheet_id"`
	ReferenceSheetName     string `koanf:"reference_sheet_name"`

	// CredentialsJSON holds a service account key; CredentialsFile points to one.
	CredentialsJSON string `koanf:"credentials_json"`
	CredentialsFile string `koanf:"credentials_file"`

	SheetsBaseURL string        `koanf:"sheets_base_url"`
	SheetsTimeout time.Duration `koanf:"sheets_timeout"`

	// WorkbookDir is where the workbook driver keeps its .xlsx files.
	WorkbookDir string `koanf:"workbook_dir"`

	// ReferenceWorkbook is the .xlsx the memory driver loads its reference
	// tables from. The ledger itself is lost on exit.
	ReferenceWorkbook string `koanf:"reference_workbook"`

	// Reference table layout.
	HeaderRow        int    `koanf:"header_row"`
	FirstEventColumn string `koanf:"first_event_column"`
	LastEventColumn  string `koanf:"last_event_column"`
	ItemColumn       string `koanf:"item_column"`
	FirstItemRow     int    `koanf:"first_item_row"`
	LastItemRow      int    `koanf:"last_item_row"`

	// PriceCacheEnabled puts a read-through cache in front of reference reads.
	PriceCacheEnabled bool          `koanf:"price_cache_enabled"`
	PriceCacheSize    int           `koanf:"price_cache_size"`
	PriceCacheTTL     time.Duration `koanf:"price_cache_ttl"`

	// Timezone is the IANA zone ledger timestamps are written in.
	Timezone string `koanf:"timezone"`

	// SessionCookie names the cookie carrying a terminal's session id.
	SessionCookie string `koanf:"session_cookie"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8081",
		StoreDriver:        DriverSheets,
		ReferenceSheetName: "price",
		SheetsTimeout:      15 * time.Second,
		WorkbookDir:        "data",
		HeaderRow:          8,
		FirstEventColumn:   "E",
		LastEventColumn:    "Z",
		ItemColumn:         "C",
		FirstItemRow:       9,
		LastItemRow:        100,
		PriceCacheSize:     256,
		PriceCacheTTL:      time.Minute,
		Timezone:           "Local",
		SessionCookie:      "pos_session",
	}
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != DriverSheets && c.StoreDriver != DriverWorkbook && c.StoreDriver != DriverMemory:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.LedgerSpreadsheetID == "" || c.ReferenceSpreadsheetID == "":
		return fmt.Errorf("%w: ledger_spreadsheet_id and reference_spreadsheet_id are required", ErrInvalidConfig)
	case c.ReferenceSheetName == "":
		return fmt.Errorf("%w: reference_sheet_name must not be empty", ErrInvalidConfig)
	case c.StoreDriver == DriverMemory && c.ReferenceWorkbook == "":
		return fmt.Errorf("%w: memory driver needs reference_workbook", ErrInvalidConfig)
	case c.StoreDriver == DriverSheets && c.CredentialsJSON == "" && c.CredentialsFile == "":
		return fmt.Errorf("%w: sheets driver needs credentials_json or credentials_file", ErrInvalidConfig)
	case c.PriceCacheEnabled && c.PriceCacheSize <= 0:
		return fmt.Errorf("%w: price_cache_size must be positive", ErrInvalidConfig)
	}
	if _, err := c.ReferenceLayout(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ReferenceLayout converts the layout settings into a sales.Layout.
func (c *Config) ReferenceLayout() (sales.Layout, error) {
	first, err := a1.ColumnNumber(c.FirstEventColumn)
	if err != nil {
		return sales.Layout{}, fmt.Errorf("%w: first_event_column: %v", ErrInvalidConfig, err)
	}
	last, err := a1.ColumnNumber(c.LastEventColumn)
	if err != nil {
		return sales.Layout{}, fmt.Errorf("%w: last_event_column: %v", ErrInvalidConfig, err)
	}
	item, err := a1.ColumnNumber(c.ItemColumn)
	if err != nil {
		return sales.Layout{}, fmt.Errorf("%w: item_column: %v", ErrInvalidConfig, err)
	}
	if last < first {
		return sales.Layout{}, fmt.Errorf("%w: last_event_column before first_event_column", ErrInvalidConfig)
	}
	if c.HeaderRow < 1 || c.FirstItemRow < 1 || c.LastItemRow < c.FirstItemRow {
		return sales.Layout{}, fmt.Errorf("%w: invalid reference rows", ErrInvalidConfig)
	}
	return sales.Layout{
		SheetName:        c.ReferenceSheetName,
		HeaderRow:        c.HeaderRow,
		FirstEventColumn: first,
		LastEventColumn:  last,
		ItemColumn:       item,
		FirstItemRow:     c.FirstItemRow,
		LastItemRow:      c.LastItemRow,
	}, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone: %v", ErrInvalidConfig, err)
	}
	return loc, nil
}
