package sink

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/heysheet/heysheet/internal/providers/email"
)

var submissionTmpl = template.Must(template.New("submission").Parse(`
<h2>New submission on {{.FormTitle}}</h2>
<table cellpadding="6" cellspacing="0" border="0">
{{- range .Fields}}
  <tr><td><strong>{{.Name}}</strong></td><td>{{.Value}}</td></tr>
{{- end}}
</table>
`))

// EmailSink mails a submission summary to the form's notification address.
type EmailSink struct {
	provider email.Provider
}

func NewEmailSink(provider email.Provider) *EmailSink {
	return &EmailSink{provider: provider}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, d Delivery) error {
	var body bytes.Buffer
	err := submissionTmpl.Execute(&body, map[string]any{
		"FormTitle": d.Form.Title,
		"Fields":    d.Fields,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New submission on %s", d.Form.Title)
	return s.provider.Send(ctx, []string{d.Form.NotificationEmail}, subject, body.String())
}
