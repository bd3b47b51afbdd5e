package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templates embed.FS

var welcomeTemplate = template.Must(template.ParseFS(templates, "templates/admin_welcome.html"))

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	cfg    Config
	dialer Dialer
	logger *zap.Logger
}

func NewEmailSender(cfg Config, logger *zap.Logger) *EmailSender {
	return NewEmailSenderWithDialer(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), logger)
}

func NewEmailSenderWithDialer(cfg Config, dialer Dialer, logger *zap.Logger) *EmailSender {
	if cfg.From == "" {
		cfg.From = "no-reply@stonerealestate.com.au"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailSender{cfg: cfg, dialer: dialer, logger: logger.With(zap.String("component", "mail"))}
}

func (s *EmailSender) SendAdminWelcome(to, name, username string) error {
	if name == "" {
		name = username
	}
	data := WelcomeEmailData{Name: name, Username: username, LoginURL: s.cfg.LoginURL}

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render welcome template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Welcome to the Stone back office, %s", name))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp: %w", err)
	}

	s.logger.Debug("welcome e-mail sent", zap.String("username", username))
	return nil
}
