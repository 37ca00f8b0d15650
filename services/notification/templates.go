package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template names.
const (
	TemplateAdminReservation     = "admin_reservation"
	TemplateCustomerConfirmation = "customer_confirmation"
)

type messageTemplate struct {
	title *template.Template // push title, email subject
	body  *template.Template
}

var templates = map[string]messageTemplate{
	TemplateAdminReservation: {
		title: template.Must(template.New("admin_title").Parse(`Nouvelle réservation {{.number}}`)),
		body: template.Must(template.New("admin_body").Parse(
			`🚖 Nouvelle réservation VTC
Numéro : {{.number}}
Nom : {{.name}}
Téléphone : {{.phone}}
Départ : {{.pickup}}
Destination : {{.destination}}
Service : {{.tier}}
Passagers : {{.passengers}}
Bagages : {{.bags}}
Date : {{.date}} à {{.time}}
Prix : {{.price}} {{.currency}}
Paiement : {{.payment}}`)),
	},
	TemplateCustomerConfirmation: {
		title: template.Must(template.New("customer_title").Parse(`Réservation {{.number}}`)),
		body: template.Must(template.New("customer_body").Parse(
			`VTCLAND : votre demande de réservation {{.number}} du {{.date}} à {{.time}} est enregistrée. Notre équipe vous confirmera la prise en charge sous peu.`)),
	},
}

// Render returns the title and body of a template filled with params.
func Render(name string, params map[string]string) (string, string, error) {
	t, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var title, body bytes.Buffer
	if err := t.title.Execute(&title, params); err != nil {
		return "", "", fmt.Errorf("render %s title: %w", name, err)
	}
	if err := t.body.Execute(&body, params); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", name, err)
	}
	return title.String(), body.String(), nil
}
