package sheets

import (
	"context"
	"errors"

	integrationdomain "github.com/heysheet/heysheet/internal/integration/domain"
	"github.com/heysheet/heysheet/internal/sink"
	"go.uber.org/zap"
)

var (
	ErrNoSpreadsheet  = errors.New("no_spreadsheet_linked")
	ErrNoGoogleLinked = errors.New("no_google_account_linked")
)

// ClientFactory resolves a spreadsheet client for an access token. Tests
// inject a factory returning a fake.
type ClientFactory func(ctx context.Context, accessToken string) (Client, error)

// Adapter appends one row per submission, growing the header row as new
// field names arrive. Two concurrent submissions can race on the header
// read-modify-write; the spreadsheet API applies them last-write-wins.
type Adapter struct {
	log      *zap.Logger
	accounts integrationdomain.Service
	factory  ClientFactory
}

func NewAdapter(log *zap.Logger, accounts integrationdomain.Service, factory ClientFactory) *Adapter {
	if factory == nil {
		factory = NewGoogleClient
	}
	return &Adapter{
		log:      log.Named("sheets.adapter"),
		accounts: accounts,
		factory:  factory,
	}
}

// Append implements sink.RowAppender.
func (a *Adapter) Append(ctx context.Context, d sink.Delivery) (int64, error) {
	form := d.Form
	if form.SpreadsheetID == "" {
		return 0, ErrNoSpreadsheet
	}
	if form.GoogleAccountID == nil {
		return 0, ErrNoGoogleLinked
	}

	account, err := a.accounts.GetByID(ctx, *form.GoogleAccountID)
	if err != nil {
		return 0, err
	}

	client, err := a.factory(ctx, account.AccessToken)
	if err != nil {
		return 0, err
	}

	tab := form.SheetTab()
	incoming := d.Names()

	exists, err := client.SheetExists(ctx, form.SpreadsheetID, tab)
	if err != nil {
		return 0, err
	}

	var headers []string
	if !exists {
		if err := client.CreateSheet(ctx, form.SpreadsheetID, tab); err != nil {
			return 0, err
		}
		headers = incoming
		if err := client.WriteHeader(ctx, form.SpreadsheetID, tab, headers); err != nil {
			return 0, err
		}
	} else {
		existing, err := client.ReadHeader(ctx, form.SpreadsheetID, tab)
		if err != nil {
			return 0, err
		}
		if len(existing) == 0 {
			headers = incoming
			if err := client.WriteHeader(ctx, form.SpreadsheetID, tab, headers); err != nil {
				return 0, err
			}
		} else {
			var changed bool
			headers, changed = Reconcile(existing, incoming)
			if changed {
				if err := client.WriteHeader(ctx, form.SpreadsheetID, tab, headers); err != nil {
					return 0, err
				}
			}
		}
	}

	row := BuildRow(headers, d.Map())
	rowNumber, err := client.AppendRow(ctx, form.SpreadsheetID, tab, row)
	if err != nil {
		return 0, err
	}

	a.log.Debug("row appended",
		zap.String("spreadsheet_id", form.SpreadsheetID),
		zap.String("sheet", tab),
		zap.Int64("row", rowNumber),
	)
	return rowNumber, nil
}
