package notion

import (
	"context"

	"github.com/jomei/notionapi"
)

// Schema maps property names to their Notion types. Property types outside
// PropertyType are carried through verbatim so the adapter can skip them.
type Schema map[string]PropertyType

// PropertyValue pairs a value with the schema type it must be encoded as.
type PropertyValue struct {
	Type  PropertyType
	Value any
}

// Client is the database surface the adapter works against.
type Client interface {
	GetSchema(ctx context.Context, databaseID string) (Schema, error)
	AddProperties(ctx context.Context, databaseID string, props map[string]PropertyType) error
	CreatePage(ctx context.Context, databaseID string, props map[string]PropertyValue) error
}

// ClientFactory resolves a Client for an access token.
type ClientFactory func(accessToken string) Client

type apiClient struct {
	client *notionapi.Client
}

func NewAPIClient(accessToken string) Client {
	return &apiClient{client: notionapi.NewClient(notionapi.Token(accessToken))}
}

func (c *apiClient) GetSchema(ctx context.Context, databaseID string) (Schema, error) {
	database, err := c.client.Database.Get(ctx, notionapi.DatabaseID(databaseID))
	if err != nil {
		return nil, err
	}
	schema := make(Schema, len(database.Properties))
	for name, config := range database.Properties {
		schema[name] = PropertyType(config.GetType())
	}
	return schema, nil
}

func (c *apiClient) AddProperties(ctx context.Context, databaseID string, props map[string]PropertyType) error {
	if len(props) == 0 {
		return nil
	}
	configs := make(notionapi.PropertyConfigs, len(props))
	for name, propType := range props {
		configs[name] = propertyConfig(propType)
	}
	_, err := c.client.Database.Update(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseUpdateRequest{
		Properties: configs,
	})
	return err
}

func (c *apiClient) CreatePage(ctx context.Context, databaseID string, props map[string]PropertyValue) error {
	properties := make(notionapi.Properties, len(props))
	for name, pv := range props {
		property := propertyValue(pv)
		if property == nil {
			continue
		}
		properties[name] = property
	}
	_, err := c.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	return err
}

func propertyConfig(propType PropertyType) notionapi.PropertyConfig {
	switch propType {
	case TypeNumber:
		return notionapi.NumberPropertyConfig{
			Type:   notionapi.PropertyConfigTypeNumber,
			Number: notionapi.NumberFormat{Format: notionapi.FormatNumber},
		}
	case TypeCheckbox:
		return notionapi.CheckboxPropertyConfig{
			Type:     notionapi.PropertyConfigTypeCheckbox,
			Checkbox: struct{}{},
		}
	case TypeEmail:
		return notionapi.EmailPropertyConfig{
			Type:  notionapi.PropertyConfigTypeEmail,
			Email: struct{}{},
		}
	case TypeURL:
		return notionapi.URLPropertyConfig{
			Type: notionapi.PropertyConfigTypeURL,
			URL:  struct{}{},
		}
	case TypePhone:
		return notionapi.PhoneNumberPropertyConfig{
			Type:        notionapi.PropertyConfigTypePhoneNumber,
			PhoneNumber: struct{}{},
		}
	case TypeDate:
		return notionapi.DatePropertyConfig{
			Type: notionapi.PropertyConfigTypeDate,
			Date: struct{}{},
		}
	case TypeMultiSelect:
		return notionapi.MultiSelectPropertyConfig{
			Type:        notionapi.PropertyConfigTypeMultiSelect,
			MultiSelect: notionapi.Select{Options: []notionapi.Option{}},
		}
	default:
		return notionapi.RichTextPropertyConfig{
			Type:     notionapi.PropertyConfigTypeRichText,
			RichText: struct{}{},
		}
	}
}

func propertyValue(pv PropertyValue) notionapi.Property {
	switch pv.Type {
	case TypeTitle:
		return notionapi.TitleProperty{
			Title: richText(stringValue(pv.Value)),
		}
	case TypeRichText:
		return notionapi.RichTextProperty{
			RichText: richText(stringValue(pv.Value)),
		}
	case TypeNumber:
		number, ok := numberValue(pv.Value)
		if !ok {
			return nil
		}
		return notionapi.NumberProperty{Number: number}
	case TypeCheckbox:
		checked, _ := pv.Value.(bool)
		return notionapi.CheckboxProperty{Checkbox: checked}
	case TypeEmail:
		return notionapi.EmailProperty{Email: stringValue(pv.Value)}
	case TypeURL:
		return notionapi.URLProperty{URL: stringValue(pv.Value)}
	case TypePhone:
		return notionapi.PhoneNumberProperty{PhoneNumber: stringValue(pv.Value)}
	case TypeDate:
		parsed := parseDate(stringValue(pv.Value))
		if parsed == nil {
			return nil
		}
		start := notionapi.Date(*parsed)
		return notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &start},
		}
	case TypeMultiSelect:
		options := make([]notionapi.Option, 0)
		for _, item := range sliceValue(pv.Value) {
			options = append(options, notionapi.Option{Name: item})
		}
		return notionapi.MultiSelectProperty{MultiSelect: options}
	default:
		// Rollups, formulas, files and other computed properties cannot be
		// written and are skipped.
		return nil
	}
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}}
}
