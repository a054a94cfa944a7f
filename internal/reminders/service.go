// Package reminders sends upcoming-session announcements to participants.
package reminders

import (
	"context"
	"fmt"
	"time"

	"certificate-pipeline/internal/common/logger"
	"certificate-pipeline/internal/models"
	"certificate-pipeline/internal/pipeline/delivery"
)

// lookahead is how far ahead of a session start the reminder goes out.
const lookahead = time.Hour

// ProgramRepo lists sessions due for a reminder and marks them announced.
type ProgramRepo interface {
	ListDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*models.Program, error)
	MarkNotified(ctx context.Context, id int64) error
}

// RecipientRepo lists the participants reminders go to.
type RecipientRepo interface {
	ListAll(ctx context.Context) ([]*models.Participant, error)
}

// Service sends one reminder email per participant for each session starting
// within the next hour.
type Service struct {
	programs  ProgramRepo
	recipient RecipientRepo
	transport delivery.Transport
	from      string
	fromName  string
	log       logger.Logger
}

func New(programs ProgramRepo, recipients RecipientRepo, transport delivery.Transport, from, fromName string, log logger.Logger) *Service {
	return &Service{
		programs:  programs,
		recipient: recipients,
		transport: transport,
		from:      from,
		fromName:  fromName,
		log:       log,
	}
}

// Run sends reminders for every due session and returns how many sessions
// were announced. Send failures for individual participants are logged and
// skipped; the session is still marked notified so it is not re-announced.
func (s *Service) Run(ctx context.Context) (int, error) {
	now := time.Now()
	programs, err := s.programs.ListDueForReminder(ctx, now, lookahead)
	if err != nil {
		return 0, err
	}
	if len(programs) == 0 {
		return 0, nil
	}

	recipients, err := s.recipient.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	announced := 0
	for _, program := range programs {
		sent := 0
		for _, p := range recipients {
			msg := s.buildReminder(program, p)
			if err := s.transport.Send(ctx, msg); err != nil {
				s.log.Warn("reminder send failed", map[string]interface{}{
					"programId":     program.ID,
					"participantId": p.ID,
					"error":         err.Error(),
				})
				continue
			}
			sent++
		}

		if err := s.programs.MarkNotified(ctx, program.ID); err != nil {
			s.log.Error("failed to mark program notified", map[string]interface{}{
				"programId": program.ID,
				"error":     err.Error(),
			})
			continue
		}

		s.log.Info("program reminder sent", map[string]interface{}{
			"programId": program.ID,
			"title":     program.Title,
			"sent":      sent,
		})
		announced++
	}
	return announced, nil
}

func (s *Service) buildReminder(program *models.Program, p *models.Participant) *delivery.Message {
	speaker := program.SpeakerName
	if speaker == "" {
		speaker = "TBA"
	}
	startAt := program.StartTime.Format("January 2, 2006 at 3:04 PM")

	htmlBody := fmt.Sprintf(`<div class="highlight">
    <strong>Upcoming Session Reminder</strong>
</div>

<p>Dear %s,</p>

<p>This is a friendly reminder that the following session is starting soon:</p>

<p><strong>Program:</strong> %s<br>
<strong>Time:</strong> %s<br>
<strong>Venue:</strong> %s<br>
<strong>Speaker:</strong> %s</p>

<p><strong>Description:</strong><br>
%s</p>

<p>Please ensure you arrive on time. Looking forward to seeing you there!</p>`,
		p.Name, program.Title, startAt, program.Venue, speaker, program.Description)

	textBody := fmt.Sprintf(`Dear %s,

This is a friendly reminder that the following session is starting soon:

Program: %s
Time: %s
Venue: %s
Speaker: %s

%s

Please ensure you arrive on time. Looking forward to seeing you there!`,
		p.Name, program.Title, startAt, program.Venue, speaker, program.Description)

	return &delivery.Message{
		From:     s.from,
		FromName: s.fromName,
		To:       p.Email,
		ToName:   p.Name,
		Subject:  fmt.Sprintf("Reminder: %s starting soon", program.Title),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}
