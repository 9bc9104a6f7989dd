package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/oauth2"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

// Client is the spreadsheet surface the adapter reconciles against.
type Client interface {
	SheetExists(ctx context.Context, spreadsheetID, title string) (bool, error)
	CreateSheet(ctx context.Context, spreadsheetID, title string) error
	ReadHeader(ctx context.Context, spreadsheetID, title string) ([]string, error)
	WriteHeader(ctx context.Context, spreadsheetID, title string, headers []string) error
	AppendRow(ctx context.Context, spreadsheetID, title string, row []string) (int64, error)
}

type googleClient struct {
	svc *sheetsapi.Service
}

// NewGoogleClient builds a Client from an OAuth access token belonging to
// the form owner's linked Google account.
func NewGoogleClient(ctx context.Context, accessToken string) (Client, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &googleClient{svc: svc}, nil
}

func (c *googleClient) SheetExists(ctx context.Context, spreadsheetID, title string) (bool, error) {
	spreadsheet, err := c.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return false, err
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (c *googleClient) CreateSheet(ctx context.Context, spreadsheetID, title string) error {
	_, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	return err
}

func (c *googleClient) ReadHeader(ctx context.Context, spreadsheetID, title string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(spreadsheetID, fmt.Sprintf("%s!1:1", title)).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	headers := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		headers = append(headers, fmt.Sprint(cell))
	}
	return headers, nil
}

func (c *googleClient) WriteHeader(ctx context.Context, spreadsheetID, title string, headers []string) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	_, err := c.svc.Spreadsheets.Values.
		Update(spreadsheetID, fmt.Sprintf("%s!1:1", title), &sheetsapi.ValueRange{
			Values: [][]interface{}{row},
		}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}

var appendRangeRx = regexp.MustCompile(`![A-Z]+(\d+)(?::|$)`)

func (c *googleClient) AppendRow(ctx context.Context, spreadsheetID, title string, row []string) (int64, error) {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	resp, err := c.svc.Spreadsheets.Values.
		Append(spreadsheetID, fmt.Sprintf("%s!A:A", title), &sheetsapi.ValueRange{
			Values: [][]interface{}{values},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	return appendedRowNumber(resp), nil
}

// appendedRowNumber extracts the 1-based row index from the updated range,
// e.g. "Responses!A5:C5" -> 5. Zero when the range is missing or unparsable.
func appendedRowNumber(resp *sheetsapi.AppendValuesResponse) int64 {
	if resp == nil || resp.Updates == nil {
		return 0
	}
	match := appendRangeRx.FindStringSubmatch(resp.Updates.UpdatedRange)
	if match == nil {
		return 0
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
