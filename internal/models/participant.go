// Package models defines the persistent entities of the certificate pipeline.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CertificateType selects which certificate a participant receives.
type CertificateType string

const (
	CertificateParticipation CertificateType = "participation"
	CertificateService       CertificateType = "service"
)

// Valid reports whether the type is one of the known certificate kinds.
func (t CertificateType) Valid() bool {
	return t == CertificateParticipation || t == CertificateService
}

// Title returns the heading printed on the certificate.
func (t CertificateType) Title() string {
	if t == CertificateService {
		return "ACKNOWLEDGEMENT OF SERVICE"
	}
	return "CERTIFICATE OF PARTICIPATION"
}

// CertificateStatus tracks delivery progress for a participant.
type CertificateStatus string

const (
	StatusPending CertificateStatus = "pending"
	StatusSent    CertificateStatus = "sent"
	StatusFailed  CertificateStatus = "failed"
	StatusResent  CertificateStatus = "resent"
)

// Participant is a registered conference attendee.
type Participant struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	Email              string            `json:"email"`
	Organization       string            `json:"organization,omitempty"`
	CertificateType    CertificateType   `json:"certificate_type"`
	CertificateStatus  CertificateStatus `json:"certificate_status"`
	CertificateNumber  string            `json:"certificate_number"`
	CertificateSentAt  *time.Time        `json:"certificate_sent_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// NewCertificateNumber builds a unique, immutable certificate identifier.
// The timestamp keeps numbers roughly sortable, the random suffix keeps
// concurrent registrations from colliding.
func NewCertificateNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("MDCAN-BDM-2025-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

// AttachmentFilename derives the PDF attachment name from the participant.
// Spaces in the name become underscores so the filename survives mail clients.
func (p Participant) AttachmentFilename() string {
	kind := "Certificate"
	if p.CertificateType == CertificateService {
		kind = "Service"
	}
	name := strings.ReplaceAll(strings.TrimSpace(p.Name), " ", "_")
	return fmt.Sprintf("MDCAN_BDM_2025_%s_%s.pdf", kind, name)
}
