package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// 確認メールをtext + HTMLのmultipartで送る
type SMTPMailer struct {
	cfg      config.SMTPConfig
	renderer *Renderer
	logger   *zap.Logger
	send     sendFunc
}

var _ usecase.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg config.SMTPConfig, renderer *Renderer, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, renderer: renderer, logger: logger, send: smtp.SendMail}
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, order usecase.OrderEmail, email string, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r, err := m.renderer.OrderConfirmation(order, name)
	if err != nil {
		return false, err
	}
	msg, err := buildMessage(m.cfg, email, name, r, time.Now())
	if err != nil {
		return false, err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{email}, msg); err != nil {
		return false, fmt.Errorf("smtp send: %w", err)
	}

	m.logger.Info("order confirmation sent",
		zap.String("order_number", order.OrderNumber), zap.String("to", email))
	return true, nil
}

func buildMessage(cfg config.SMTPConfig, to, name string, r Rendered, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", r.Text},
		{"text/html; charset=UTF-8", r.HTML},
	}
	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&msg, "%s: %s\r\n", k, v) }
	header("From", formatAddress(cfg.FromName, cfg.From))
	header("To", formatAddress(name, to))
	header("Subject", mime.QEncoding.Encode("utf-8", r.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+cfg.Host+">")
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func formatAddress(name, addr string) string {
	if name == "" {
		return "<" + addr + ">"
	}
	return mime.QEncoding.Encode("utf-8", name) + " <" + addr + ">"
}
