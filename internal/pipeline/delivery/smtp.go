package delivery

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"certificate-pipeline/internal/common/config"
	apperrors "certificate-pipeline/internal/common/errors"
	"certificate-pipeline/internal/common/logger"
)

// Transport sends one built message.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPTransport delivers messages over SMTP with STARTTLS. Both the dial and
// the full send carry deadlines so a stalled server cannot wedge a bulk run.
type SMTPTransport struct {
	cfg config.SMTPConfig
	log logger.Logger
}

func NewSMTPTransport(cfg config.SMTPConfig, log logger.Logger) *SMTPTransport {
	return &SMTPTransport{cfg: cfg, log: log}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewDeliveryConnectionFailedError(err)
	}

	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	dialTimeout := config.GetDuration(t.cfg.ConnectTimeoutMs)
	sendTimeout := config.GetDuration(t.cfg.SendTimeoutMs)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return apperrors.NewDeliveryConnectionFailedError(fmt.Errorf("dial %s: %w", addr, err))
	}

	// One deadline covers the whole SMTP conversation.
	if err := conn.SetDeadline(time.Now().Add(sendTimeout)); err != nil {
		conn.Close()
		return apperrors.NewDeliveryConnectionFailedError(err)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return apperrors.NewDeliveryConnectionFailedError(err)
	}
	defer client.Close()

	if t.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName:         t.cfg.Host,
			InsecureSkipVerify: false,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return apperrors.NewDeliveryConnectionFailedError(fmt.Errorf("starttls: %w", err))
		}
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return apperrors.NewDeliveryAuthFailedError(err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return apperrors.NewDeliverySendFailedError(fmt.Errorf("set sender: %w", err))
	}
	if err := client.Rcpt(msg.To); err != nil {
		return apperrors.NewDeliverySendFailedError(fmt.Errorf("set recipient %s: %w", msg.To, err))
	}

	w, err := client.Data()
	if err != nil {
		return apperrors.NewDeliverySendFailedError(err)
	}
	if _, err := w.Write(msg.Encode()); err != nil {
		return apperrors.NewDeliverySendFailedError(err)
	}
	if err := w.Close(); err != nil {
		return apperrors.NewDeliverySendFailedError(err)
	}

	if err := client.Quit(); err != nil {
		// The message was accepted; a failed QUIT is not a delivery failure.
		t.log.Warn("smtp quit failed after accepted message", map[string]interface{}{
			"to":    msg.To,
			"error": err.Error(),
		})
	}

	t.log.Info("certificate email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}
