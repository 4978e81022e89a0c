package worker

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jwalitptl/geonotify/internal/model"
)

// Template choice follows metadata completeness, not channel: a record
// carrying the full place/travel/location triple renders the rich
// variant, anything less renders the basic one.

var richEmailTmpl = template.Must(template.New("rich_email").Parse(`
<h2>Something worth a visit near {{.Location.City}}</h2>
<p>{{.Message}}</p>
<div>
  <h3>{{.Place.Name}}</h3>
  <p>{{.Place.Address}}</p>
  {{if .Place.Rating}}<p>Rating: {{printf "%.1f" .Place.Rating}} / 5</p>{{end}}
  {{if .Place.OpeningHours}}<p>Open: {{.Place.OpeningHours}}</p>{{end}}
  <p>Travel: {{.Travel.Duration}} ({{.Travel.Distance}}){{if not .Travel.Measured}}, estimated{{end}}</p>
  {{if .Place.MapURL}}<p><a href="{{.Place.MapURL}}">Open map</a></p>{{end}}
</div>
`))

var basicEmailTmpl = template.Must(template.New("basic_email").Parse(`
<p>{{.Message}}</p>
<p>Recommended: {{.PlaceName}}</p>
`))

type richTemplateData struct {
	Message  string
	Place    *model.PlaceDetails
	Travel   *model.TravelEstimate
	Location *model.LocationInfo
}

// Renderer produces channel-specific content for a notification.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Email renders the subject and HTML body for an email delivery.
func (r *Renderer) Email(n *model.Notification) (subject, body string, err error) {
	subject = fmt.Sprintf("A place to visit: %s", n.PlaceName)

	var buf bytes.Buffer
	switch n.Metadata.Variant() {
	case model.MetadataRich:
		err = richEmailTmpl.Execute(&buf, richTemplateData{
			Message:  n.Message,
			Place:    n.Metadata.Place,
			Travel:   n.Metadata.Travel,
			Location: n.Metadata.Location,
		})
	default:
		err = basicEmailTmpl.Execute(&buf, n)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to render email template: %w", err)
	}
	return subject, buf.String(), nil
}

// SMS renders the plain-text body for an SMS delivery.
func (r *Renderer) SMS(n *model.Notification) string {
	if n.Metadata.Variant() == model.MetadataRich {
		travel := n.Metadata.Travel.Duration
		if !n.Metadata.Travel.Measured {
			travel += " (est.)"
		}
		return fmt.Sprintf("%s %s, %s away. %s",
			n.Message, n.Metadata.Place.Address, travel, n.Metadata.Place.OpeningHours)
	}
	return fmt.Sprintf("%s Recommended: %s", n.Message, n.PlaceName)
}
