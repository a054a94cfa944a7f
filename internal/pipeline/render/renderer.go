// Package render produces the certificate HTML handed to the PDF converter.
//
// Both certificate kinds share one skeleton; only the title and the wording
// block differ. Output is deterministic for a given participant and asset
// set, which keeps regenerated certificates byte-identical.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"certificate-pipeline/internal/common/config"
	"certificate-pipeline/internal/models"
	"certificate-pipeline/internal/pipeline/assets"
)

// Data feeds the certificate template.
type Data struct {
	Title           string
	ParticipantName string
	Participation   bool

	EventName  string
	EventOrg   string
	EventVenue string

	ChairmanName   string
	ChairmanTitle  string
	SecretaryName  string
	SecretaryTitle string

	// Image URIs, empty when the asset could not be resolved. The template
	// omits the img element entirely for empty URIs.
	MDCANLogo          string
	CoalCityLogo       string
	PresidentSignature string
	ChairmanSignature  string
}

// Renderer builds certificate HTML from participant and event data.
type Renderer struct {
	tmpl  *template.Template
	event config.EventConfig
}

func New(event config.EventConfig) (*Renderer, error) {
	tmpl, err := template.New("certificate").Parse(certificateHTML)
	if err != nil {
		return nil, fmt.Errorf("parse certificate template: %w", err)
	}
	return &Renderer{tmpl: tmpl, event: event}, nil
}

// Render produces the full HTML document for one participant.
func (r *Renderer) Render(p *models.Participant, resolved map[string]assets.Asset) (string, error) {
	if !p.CertificateType.Valid() {
		return "", fmt.Errorf("unknown certificate type %q", p.CertificateType)
	}

	data := Data{
		Title:           p.CertificateType.Title(),
		ParticipantName: p.Name,
		Participation:   p.CertificateType == models.CertificateParticipation,

		EventName:  r.event.Name,
		EventVenue: r.event.Venue,
		EventOrg:   "OF MEDICAL AND DENTAL CONSULTANTS' ASSOCIATION OF NIGERIA",

		ChairmanName:   r.event.ChairmanName,
		ChairmanTitle:  r.event.ChairmanTitle,
		SecretaryName:  r.event.SecretaryName,
		SecretaryTitle: r.event.SecretaryTitle,
	}

	if a, ok := resolved[assets.AssetMDCANLogo]; ok {
		data.MDCANLogo = a.FileURI()
	}
	if a, ok := resolved[assets.AssetCoalCityLogo]; ok {
		data.CoalCityLogo = a.FileURI()
	}
	if a, ok := resolved[assets.AssetPresidentSignature]; ok {
		data.PresidentSignature = a.FileURI()
	}
	if a, ok := resolved[assets.AssetChairmanSignature]; ok {
		data.ChairmanSignature = a.FileURI()
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render certificate: %w", err)
	}
	return buf.String(), nil
}
