package render

// certificateHTML is the shared skeleton for both certificate kinds. The
// wording block switches on .Participation; everything else is common.
const certificateHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: Georgia, 'Times New Roman', serif;
            margin: 0;
            padding: 0;
            background: #fffdf5;
        }
        .certificate-container {
            position: relative;
            padding: 50px 40px;
            text-align: center;
        }
        .decorative-border {
            position: absolute;
            top: 15px;
            left: 15px;
            right: 15px;
            bottom: 15px;
            border: 3px double #d4af37;
            border-radius: 8px;
            pointer-events: none;
        }
        .header-section {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin: 0 60px;
        }
        .logo {
            height: 90px;
        }
        .golden-seal {
            width: 110px;
            height: 110px;
            border-radius: 50%;
            background: radial-gradient(circle, #ffd700 0%, #d4af37 100%);
            display: flex;
            align-items: center;
            justify-content: center;
            margin: 0 auto;
        }
        .seal-text {
            font-weight: bold;
            font-size: 16px;
            color: #5b4a0e;
            line-height: 1.3;
        }
        .certificate-title {
            font-size: 40px;
            letter-spacing: 4px;
            color: #8b6914;
            margin: 35px 0 20px 0;
        }
        .certificate-text {
            font-size: 19px;
            color: #333;
            margin: 15px 0;
        }
        .participant-name {
            font-size: 32px;
            font-weight: bold;
            color: #1a1a1a;
            border-bottom: 2px solid #d4af37;
            display: inline-block;
            padding: 0 40px 5px 40px;
            margin: 25px 0;
        }
        .conference-details {
            background: linear-gradient(90deg, rgba(212, 175, 55, 0.1) 0%, rgba(255, 215, 0, 0.1) 50%, rgba(212, 175, 55, 0.1) 100%);
            padding: 15px;
            border-radius: 10px;
            margin: 20px 60px;
            border: 1px solid rgba(212, 175, 55, 0.3);
        }
        .event-name {
            font-size: 28px;
            color: #8b6914;
            margin: 10px 0;
        }
        .signatures {
            display: flex;
            justify-content: space-around;
            margin-top: 45px;
        }
        .signature {
            width: 250px;
        }
        .signature-image {
            height: 60px;
        }
        .signature-line {
            width: 180px;
            border-bottom: 1px solid #333;
            margin: 5px auto;
        }
        .signature-name {
            font-size: 17px;
            font-weight: bold;
        }
        .signature-title {
            font-size: 14px;
            color: #555;
        }
    </style>
</head>
<body>
    <div class="certificate-container">
        <div class="decorative-border"></div>

        <div class="header-section">
            {{if .MDCANLogo}}<img src="{{.MDCANLogo}}" alt="MDCAN Logo" class="logo" />{{end}}
            <div class="golden-seal">
                <div class="seal-text">
                    MDCAN<br>
                    BDM<br>
                    2025
                </div>
            </div>
            {{if .CoalCityLogo}}<img src="{{.CoalCityLogo}}" alt="Coal City Logo" class="logo" />{{end}}
        </div>

        <div>
            <div class="certificate-title">
                {{.Title}}
            </div>

            {{if .Participation}}
            <div class="certificate-text">
                This is to certify that
            </div>

            <div class="participant-name">
                {{.ParticipantName}}
            </div>

            <div class="certificate-text">
                participated in the
            </div>
            {{else}}
            <div class="certificate-text">
                This is to acknowledge and appreciate
            </div>

            <div class="certificate-text">
                the exceptional service of
            </div>

            <div class="participant-name">
                {{.ParticipantName}}
            </div>

            <div class="certificate-text">
                towards the successful hosting of the
            </div>
            {{end}}

            <div class="conference-details">
                <div class="event-name">
                    {{.EventName}}
                </div>

                <div class="certificate-text">
                    {{.EventOrg}}
                </div>

                <div class="certificate-text">
                    {{.EventVenue}}
                </div>
            </div>
        </div>

        <div class="signatures">
            <div class="signature">
                {{if .PresidentSignature}}<img src="{{.PresidentSignature}}" alt="Chairman Signature" class="signature-image" />{{end}}
                <div class="signature-line"></div>
                <div class="signature-name">{{.ChairmanName}}</div>
                <div class="signature-title">{{.ChairmanTitle}}</div>
            </div>

            <div class="signature">
                {{if .ChairmanSignature}}<img src="{{.ChairmanSignature}}" alt="Secretary Signature" class="signature-image" />{{end}}
                <div class="signature-line"></div>
                <div class="signature-name">{{.SecretaryName}}</div>
                <div class="signature-title">{{.SecretaryTitle}}</div>
            </div>
        </div>
    </div>
</body>
</html>
`
