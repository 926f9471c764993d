package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender delivers one rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, to string, msg *Rendered) error
}

type SMTPSender struct {
	addr string
	from mail.Address
	auth smtp.Auth
}

func NewSMTPSender(host string, port int, user, password, from, fromName string) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPSender{
		addr: host + ":" + strconv.Itoa(port),
		from: mail.Address{Name: fromName, Address: from},
		auth: auth,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to string, msg *Rendered) error {
	body, err := buildMIME(s.from, to, msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, s.auth, s.from.Address, []string{to}, body)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s failed: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildMIME assembles a multipart/alternative message with text and HTML parts.
func buildMIME(from mail.Address, to string, msg *Rendered) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogSender writes messages to the log instead of delivering them. It is used
// when no SMTP host is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to string, msg *Rendered) error {
	s.logger.Info("email not delivered (no smtp host configured)",
		zap.String("to", to),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

// TelegramSender posts admin alerts to a Telegram chat. The recipient
// address is ignored.
type TelegramSender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot, chatID: chatID}, nil
}

func NewTelegramSenderWithBot(bot *tgbotapi.BotAPI, chatID int64) *TelegramSender {
	return &TelegramSender{bot: bot, chatID: chatID}
}

func (s *TelegramSender) Send(_ context.Context, _ string, msg *Rendered) error {
	text := msg.Subject
	if msg.Text != "" {
		text += "\n\n" + msg.Text
	}
	if _, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, text)); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}
