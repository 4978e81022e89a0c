package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Valid reports whether c is a deliverable channel.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// LocationInfo captures where the user was when the notification was
// created. Detected is true when the city came from reverse geocoding
// rather than the caller.
type LocationInfo struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Detected  bool    `json:"detected"`
}

// MetadataVariant selects which template a channel worker renders.
type MetadataVariant string

const (
	MetadataRich  MetadataVariant = "rich"
	MetadataBasic MetadataVariant = "basic"
)

// Metadata is the structured payload attached to a notification.
// Status updates merge into it, they never replace it wholesale.
type Metadata struct {
	Place        *PlaceDetails   `json:"place,omitempty"`
	Travel       *TravelEstimate `json:"travel,omitempty"`
	Location     *LocationInfo   `json:"location,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	RetryCount   int             `json:"retry_count,omitempty"`
}

// Variant returns MetadataRich only when the full triple (place details,
// travel estimate, location) is present. Template choice follows the
// variant, not the channel.
func (m Metadata) Variant() MetadataVariant {
	if m.Place != nil && m.Travel != nil && m.Location != nil {
		return MetadataRich
	}
	return MetadataBasic
}

// Value implements driver.Valuer so Metadata round-trips through a
// Postgres JSONB column.
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = Metadata{}
		return nil
	default:
		return fmt.Errorf("unsupported metadata source type %T", src)
	}
}

// Notification is the unit of work tracked end to end. Created in
// pending state; only status updates mutate it afterwards. Once status
// leaves pending the row reflects the latest delivery outcome.
type Notification struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	UserID    uuid.UUID          `json:"user_id" db:"user_id"`
	Channel   Channel            `json:"channel" db:"channel"`
	Message   string             `json:"message" db:"message"`
	PlaceName string             `json:"place_name" db:"place_name"`
	Status    NotificationStatus `json:"status" db:"status"`
	Metadata  Metadata           `json:"metadata" db:"metadata"`
	SentAt    *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
}

// DeliveryJob is the transient queue payload. It exists only inside the
// queue; each dequeue hands it to exactly one channel worker.
type DeliveryJob struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Channel        Channel   `json:"channel"`
}
