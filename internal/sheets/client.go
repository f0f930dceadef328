// Package sheets is a minimal Google Sheets v4 REST client covering the calls
// the sales ledger needs: read a range, append rows, list sheet titles and add
// a sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"resty.dev/v3"
)

// DefaultBaseURL is the public Sheets API endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com"

// Scope grants read/write access to spreadsheets.
const Scope = "https://www.googleapis.com/auth/spreadsheets"

// ErrAPI is returned when the Sheets API answers with a non-2xx status.
var ErrAPI = errors.New("sheets api error")

// Client talks to the Sheets REST API.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	CredentialsJSON []byte
	CredentialsFile string
	Timeout         time.Duration
	// HTTPClient replaces the authenticated client, mainly for tests.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New builds a client. Unless HTTPClient is given, requests are authorized
// with the service account in CredentialsJSON or CredentialsFile.
func New(ctx context.Context, opts Options) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		data := opts.CredentialsJSON
		if len(data) == 0 && opts.CredentialsFile != "" {
			var err error
			data, err = os.ReadFile(opts.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("reading credentials: %w", err)
			}
		}
		if len(data) == 0 {
			return nil, errors.New("sheets: no service account credentials configured")
		}
		creds, err := google.CredentialsFromJSON(ctx, data, Scope)
		if err != nil {
			return nil, fmt.Errorf("parsing credentials: %w", err)
		}
		hc = oauth2.NewClient(ctx, creds.TokenSource)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rc := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	return &Client{http: rc, logger: logger}, nil
}

type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

type spreadsheet struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// GetValues reads rng with unformatted values and returns them as strings.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	var out valueRange
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", spreadsheetID).
		SetPathParam("range", rng).
		SetQueryParam("valueRenderOption", "UNFORMATTED_VALUE").
		SetResult(&out).
		Get("/v4/spreadsheets/{id}/values/{range}")
	if err := c.check("values.get", res, err); err != nil {
		return nil, err
	}

	rows := make([][]string, len(out.Values))
	for i, row := range out.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = scalar(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// AppendValues appends rows after the table found at rng, inserting new rows.
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", spreadsheetID).
		SetPathParam("range", rng).
		SetQueryParam("valueInputOption", "RAW").
		SetQueryParam("insertDataOption", "INSERT_ROWS").
		SetBody(valueRange{Values: rows}).
		Post("/v4/spreadsheets/{id}/values/{range}:append")
	return c.check("values.append", res, err)
}

// ListSheetTitles returns the titles of all sheets in the spreadsheet.
func (c *Client) ListSheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	var out spreadsheet
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", spreadsheetID).
		SetQueryParam("fields", "sheets.properties.title").
		SetResult(&out).
		Get("/v4/spreadsheets/{id}")
	if err := c.check("spreadsheets.get", res, err); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(out.Sheets))
	for _, s := range out.Sheets {
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}

// CreateSheet adds a sheet with the given title.
func (c *Client) CreateSheet(ctx context.Context, spreadsheetID, title string) error {
	body := map[string]any{
		"requests": []any{
			map[string]any{
				"addSheet": map[string]any{
					"properties": map[string]any{"title": title},
				},
			},
		},
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", spreadsheetID).
		SetBody(body).
		Post("/v4/spreadsheets/{id}:batchUpdate")
	return c.check("spreadsheets.batchUpdate", res, err)
}

func (c *Client) check(op string, res *resty.Response, err error) error {
	if err != nil {
		c.logger.Error("sheets request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.IsError() {
		c.logger.Warn("sheets api returned error",
			zap.String("op", op),
			zap.Int("status", res.StatusCode()),
			zap.String("body", res.String()))
		return fmt.Errorf("%w: %s: status %d: %s", ErrAPI, op, res.StatusCode(), res.String())
	}
	return nil
}

// scalar renders a JSON cell value the way it appears in the sheet.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(t)
	}
}
