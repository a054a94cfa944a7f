package delivery

import (
	"fmt"

	"certificate-pipeline/internal/models"
)

// BuildMessage assembles the certificate email for one participant.
func BuildMessage(from, fromName string, p *models.Participant, pdfData []byte) *Message {
	certName := "Certificate of Participation"
	thanks := "Congratulations! Thank you for participating in"
	appreciation := "We appreciate your valuable participation and hope you found the conference beneficial."
	if p.CertificateType == models.CertificateService {
		certName = "Acknowledgement of Service"
		thanks = "Thank you for your exceptional service and contribution to the success of"
		appreciation = "We deeply appreciate your dedication and hard work in making this conference a success."
	}

	return &Message{
		From:           from,
		FromName:       fromName,
		To:             p.Email,
		ToName:         p.Name,
		Subject:        SubjectFor(p.CertificateType),
		HTMLBody:       htmlBody(p.Name, certName, thanks, appreciation),
		TextBody:       textBody(p.Name, certName, thanks, appreciation),
		AttachmentName: p.AttachmentFilename(),
		AttachmentData: pdfData,
	}
}

func htmlBody(name, certName, thanks, appreciation string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 0; background-color: #f5f5f5; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .header { text-align: center; margin-bottom: 30px; border-bottom: 2px solid #d4af37; padding-bottom: 20px; }
        .title { color: #1a365d; font-size: 24px; font-weight: bold; margin-bottom: 10px; }
        .subtitle { color: #666; font-size: 16px; }
        .content { margin: 20px 0; line-height: 1.6; }
        .certificate-info { background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid #d4af37; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="title">MDCAN BDM 14th - 2025</div>
            <div class="subtitle">Enugu, September 1-6, 2025</div>
        </div>

        <div class="content">
            <p>Dear %s,</p>

            <p>%s the MDCAN BDM 14th - 2025 conference held in Enugu from 1st - 6th September, 2025.</p>

            <div class="certificate-info">
                <p><strong>Your %s is attached to this email.</strong></p>
                <p>You can download and save it for your records or print it if needed.</p>
            </div>

            <p>%s</p>

            <p>If you have any questions or need further assistance, please don't hesitate to contact us.</p>
        </div>

        <div class="footer">
            <p><strong>MDCAN BDM 2025 Organizing Committee</strong></p>
            <p>Prof. Appolos Ndukuba - LOC Chairman<br>
            Dr. Augustine Duru - LOC Secretary, MDCAN Sec. Gen.</p>
        </div>
    </div>
</body>
</html>`, name, thanks, certName, appreciation)
}

func textBody(name, certName, thanks, appreciation string) string {
	return fmt.Sprintf(`Dear %s,

%s the MDCAN BDM 14th - 2025 conference held in Enugu from 1st - 6th September, 2025.

Please find attached your %s.

%s

Best regards,
MDCAN BDM 2025 Organizing Committee

Prof. Appolos Ndukuba
LOC Chairman

Dr. Augustine Duru
LOC Secretary
MDCAN Sec. Gen.`, name, thanks, certName, appreciation)
}
