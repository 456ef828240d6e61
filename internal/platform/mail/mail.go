// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

/*
Package mail provides the outbound email transport for the platform.

It renders an HTML template with per-message data and delivers the result
over SMTP. The [Mailer] interface is what domain services depend on; the
SMTP implementation is wired in at startup.

Templates:

  - activation-email: registration ticket with the 4-digit code.
  - reset-password: password recovery link.
*/
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jordan-wright/email"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names accepted by [Message.Template].
const (
	TemplateActivation    = "activation-email"
	TemplateResetPassword = "reset-password"
)

// Message describes a single outbound email.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     any
}

// Mailer renders a template and delivers an email.
type Mailer interface {

	/*
		Send renders the message template and delivers it to the recipient.

		Parameters:
		  - context: context.Context
		  - message: Message

		Returns:
		  - error: Rendering or SMTP transport failures
	*/
	Send(context context.Context, message Message) error
}

// # SMTP Implementation

// SMTPConfig holds the transport credentials for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Mail     string
	Password string
}

// SMTPMailer implements [Mailer] over plain-auth SMTP.
type SMTPMailer struct {
	cfg       SMTPConfig
	templates *template.Template
}

// NewSMTPMailer parses the embedded templates and returns a ready mailer.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mail: failed to parse templates: %w", err)
	}
	return &SMTPMailer{cfg: cfg, templates: templates}, nil
}

/*
Send renders the named template and delivers the email over SMTP.

Description: The SMTP dial blocks for the whole send attempt; callers that
cannot tolerate the latency must not call Send on the request path.

Parameters:
  - context: context.Context (reserved; net/smtp does not take a context)
  - message: Message

Returns:
  - error: Rendering failures or transport errors
*/
func (mailer *SMTPMailer) Send(context context.Context, message Message) error {

	// Render the HTML body from the embedded template
	var body bytes.Buffer
	if err := mailer.templates.ExecuteTemplate(&body, message.Template+".html", message.Data); err != nil {
		return fmt.Errorf("mail_render_failed: %w", err)
	}

	// Assemble the MIME message
	mimeMessage := email.NewEmail()
	mimeMessage.From = mailer.cfg.Mail
	mimeMessage.To = []string{message.To}
	mimeMessage.Subject = message.Subject
	mimeMessage.HTML = body.Bytes()

	// Deliver over SMTP with PLAIN auth
	address := fmt.Sprintf("%s:%d", mailer.cfg.Host, mailer.cfg.Port)
	auth := smtp.PlainAuth("", mailer.cfg.Mail, mailer.cfg.Password, mailer.cfg.Host)

	if err := mimeMessage.Send(address, auth); err != nil {
		return fmt.Errorf("mail_delivery_failed: %w", err)
	}

	return nil
}
