package models

// NotificationPayload is the queued form of a notification dispatch.
type NotificationPayload struct {
	Channel  string            `json:"channel"`  // "push", "sms" or "email"
	Template string            `json:"template"` // template name, see services/notification/templates.go
	Params   map[string]string `json:"params"`
}
