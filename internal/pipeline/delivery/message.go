// Package delivery sends certificate emails with the generated PDF attached.
package delivery

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"certificate-pipeline/internal/models"
)

// Message is one fully-built outbound email.
type Message struct {
	From     string
	FromName string
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string

	AttachmentName string
	AttachmentData []byte
}

// BodyPreview returns roughly the first n bytes of the plain-text body for
// the audit log, cut on a rune boundary so the preview stays valid UTF-8.
func (m *Message) BodyPreview(n int) string {
	body := strings.TrimSpace(m.TextBody)
	if len(body) <= n {
		return body
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

// Subject lines per certificate kind.
func SubjectFor(certType models.CertificateType) string {
	if certType == models.CertificateService {
		return "Your MDCAN BDM 14th - 2025 Acknowledgement of Service"
	}
	return "Your MDCAN BDM 14th - 2025 Certificate of Participation"
}

const (
	mixedBoundary       = "certificate-mixed-7f2a9c41"
	alternativeBoundary = "certificate-alt-3e8b5d16"
)

// Encode serializes the message as a MIME document: multipart/mixed wrapping
// a multipart/alternative text+HTML pair plus the base64 PDF attachment.
func (m *Message) Encode() []byte {
	var b strings.Builder

	from := m.From
	if m.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.FromName, m.From)
	}

	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", m.To))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", m.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", mixedBoundary))
	b.WriteString("\r\n")

	// Body: alternative part first so clients prefer it over the attachment.
	b.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", alternativeBoundary))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", alternativeBoundary))
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.TextBody)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", alternativeBoundary))
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.HTMLBody)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", alternativeBoundary))

	if len(m.AttachmentData) > 0 {
		b.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
		b.WriteString("Content-Type: application/pdf\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", m.AttachmentName))
		b.WriteString("\r\n")
		b.WriteString(wrapBase64(m.AttachmentData))
		b.WriteString("\r\n")
	}

	b.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))
	return []byte(b.String())
}

// wrapBase64 encodes data and folds the output at 76 characters per RFC 2045.
func wrapBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return b.String()
}
