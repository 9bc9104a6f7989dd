package notion

import (
	"context"
	"errors"
	"strings"

	integrationdomain "github.com/heysheet/heysheet/internal/integration/domain"
	"github.com/heysheet/heysheet/internal/sink"
	"go.uber.org/zap"
)

var (
	ErrNoDatabase       = errors.New("no_notion_database_linked")
	ErrNoNotionLinked   = errors.New("no_notion_account_linked")
	ErrNoTitleProperty  = errors.New("notion_database_has_no_title_property")
)

// Adapter creates one page per submission, extending the database schema
// with inferred property types for unknown fields.
type Adapter struct {
	log      *zap.Logger
	accounts integrationdomain.Service
	factory  ClientFactory
}

func NewAdapter(log *zap.Logger, accounts integrationdomain.Service, factory ClientFactory) *Adapter {
	if factory == nil {
		factory = NewAPIClient
	}
	return &Adapter{
		log:      log.Named("notion.adapter"),
		accounts: accounts,
		factory:  factory,
	}
}

func (a *Adapter) Name() string { return "notion" }

// Deliver implements sink.Sink.
func (a *Adapter) Deliver(ctx context.Context, d sink.Delivery) error {
	form := d.Form
	if form.NotionDatabaseID == "" {
		return ErrNoDatabase
	}
	if form.NotionAccountID == nil {
		return ErrNoNotionLinked
	}

	account, err := a.accounts.GetByID(ctx, *form.NotionAccountID)
	if err != nil {
		return err
	}
	client := a.factory(account.AccessToken)

	schema, err := client.GetSchema(ctx, form.NotionDatabaseID)
	if err != nil {
		return err
	}

	titleName := titleProperty(schema)
	if titleName == "" {
		return ErrNoTitleProperty
	}

	fields := groupFields(d)
	fields = aliasTitleKey(fields, titleName)

	// Create inferred properties for fields the schema has never seen.
	missing := map[string]PropertyType{}
	for name, value := range fields {
		if _, ok := lookupProperty(schema, name); ok {
			continue
		}
		missing[name] = InferType(value)
	}
	if len(missing) > 0 {
		if err := client.AddProperties(ctx, form.NotionDatabaseID, missing); err != nil {
			return err
		}
		schema, err = client.GetSchema(ctx, form.NotionDatabaseID)
		if err != nil {
			return err
		}
	}

	props := make(map[string]PropertyValue, len(fields))
	for name, value := range fields {
		propName, ok := lookupProperty(schema, name)
		if !ok {
			continue
		}
		propType := schema[propName]
		if !writable(propType) {
			continue
		}
		props[propName] = PropertyValue{Type: propType, Value: value}
	}

	if err := client.CreatePage(ctx, form.NotionDatabaseID, props); err != nil {
		return err
	}

	a.log.Debug("page created",
		zap.String("database_id", form.NotionDatabaseID),
		zap.String("submission_id", d.SubmissionID.String()),
	)
	return nil
}

// groupFields collapses the ordered field list into name -> value, turning
// repeated names into a string slice so they infer as multi_select.
func groupFields(d sink.Delivery) map[string]any {
	out := make(map[string]any, len(d.Fields))
	for _, field := range d.Fields {
		existing, ok := out[field.Name]
		if !ok {
			out[field.Name] = field.Value
			continue
		}
		switch prev := existing.(type) {
		case string:
			out[field.Name] = []string{prev, field.Value}
		case []string:
			out[field.Name] = append(prev, field.Value)
		}
	}
	return out
}

// aliasTitleKey renames an incoming key that case-insensitively matches the
// schema's title property so its value lands in the title column.
func aliasTitleKey(fields map[string]any, titleName string) map[string]any {
	if _, ok := fields[titleName]; ok {
		return fields
	}
	for name, value := range fields {
		if strings.EqualFold(name, titleName) {
			delete(fields, name)
			fields[titleName] = value
			break
		}
	}
	return fields
}

func titleProperty(schema Schema) string {
	for name, propType := range schema {
		if propType == TypeTitle {
			return name
		}
	}
	return ""
}

// lookupProperty finds the schema property matching a field name, exact
// first, then case-insensitive.
func lookupProperty(schema Schema, name string) (string, bool) {
	if _, ok := schema[name]; ok {
		return name, true
	}
	for propName := range schema {
		if strings.EqualFold(propName, name) {
			return propName, true
		}
	}
	return "", false
}

func writable(propType PropertyType) bool {
	switch propType {
	case TypeTitle, TypeRichText, TypeNumber, TypeCheckbox,
		TypeEmail, TypeURL, TypePhone, TypeDate, TypeMultiSelect:
		return true
	default:
		return false
	}
}
