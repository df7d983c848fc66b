package ports

import "context"

// MessageChannel selects the outbound delivery channel for a message.
type MessageChannel string

const (
	ChannelSMS   MessageChannel = "sms"
	ChannelEmail MessageChannel = "email"
)

// OutboundMessage carries the data required to push a message to the contact.
type OutboundMessage struct {
	ContactID string
	Channel   MessageChannel
	Subject   string
	Body      string
}

// FieldUpdate sets one custom field on a contact.
type FieldUpdate struct {
	ContactID string
	Field     string
	Value     string
}

// WebhookRequest POSTs a JSON payload to an external URL.
type WebhookRequest struct {
	URL     string
	Payload map[string]any
}

// Opportunity creates a pipeline opportunity for a contact.
type Opportunity struct {
	ContactID  string
	PipelineID string
	StageID    string
	Name       string
	Value      float64
}

// BookingRequest books an appointment slot on a calendar.
type BookingRequest struct {
	CalendarID string
	ContactID  string
	StartTime  string
	Notes      string
}

// Booking is the confirmed appointment returned by the CRM.
type Booking struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
}

// CRMClient is the external CRM collaborator. Each call performs one side
// effect and returns a typed failure on error; the engine never retries.
type CRMClient interface {
	AddTag(ctx context.Context, contactID, tag string) error
	RemoveTag(ctx context.Context, contactID, tag string) error
	UpdateCustomField(ctx context.Context, update FieldUpdate) error
	SendMessage(ctx context.Context, msg OutboundMessage) error
	SendWebhook(ctx context.Context, req WebhookRequest) error
	CreateOpportunity(ctx context.Context, opp Opportunity) (string, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
}
