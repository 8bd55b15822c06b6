package services

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type IMailService interface {
	SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error
	SendMailToResetPassword(email, code string) error
}

// SMTPConfig holds SMTP transport + branding settings.
type SMTPConfig struct {
	Host       string // e.g. "smtp.gmail.com"
	Port       int    // 587 (STARTTLS) or 465 (SMTPS)
	Username   string
	Password   string
	From       string // envelope from, e.g. "no-reply@tweettocourse.app"
	FromName   string // display name
	UseSSL     bool   // true for SMTPS 465, false for STARTTLS 587
	RequireTLS bool   // if true, fail when STARTTLS is unavailable

	AppName    string
	AppBaseURL string
}

type smtpMailService struct {
	cfg     SMTPConfig
	htmlTpl *template.Template
	textTpl *template.Template
}

func NewSMTPMailService(cfg SMTPConfig) (IMailService, error) {
	if cfg.AppName == "" {
		cfg.AppName = "TweetToCourse"
	}
	return &smtpMailService{
		cfg:     cfg,
		htmlTpl: template.Must(template.New("html").Parse(mailHTMLTemplate)),
		textTpl: template.Must(template.New("text").Parse(mailTextTemplate)),
	}, nil
}

func (s *smtpMailService) SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error {
	html, text, err := s.renderEmail(emailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
		AppName:   s.cfg.AppName,
		Year:      time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(to, subject, html, text)
}

// SendMailToResetPassword mails a one-time code. The code is short-lived;
// the account service owns its lifetime.
func (s *smtpMailService) SendMailToResetPassword(to, code string) error {
	subject := "Your password reset code"

	html, text, err := s.renderEmail(emailData{
		Title: subject,
		Intro: "We received a request to reset your password. Enter this code in the app to continue. If you didn't request this, you can safely ignore this email.",
		Code:  code,

		AppName: s.cfg.AppName,
		Year:    time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(to, subject, html, text)
}

type emailData struct {
	Title     string
	Intro     string
	Code      string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

const mailHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f8fafc; color: #0f172a;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    .container { max-width: 560px; margin: 32px auto; background: #ffffff;
      border-radius: 12px; overflow: hidden; border: 1px solid #e2e8f0; }
    .header { padding: 24px 28px; border-bottom: 1px solid #e2e8f0; }
    .brand { font-weight: 700; font-size: 20px; color: #2563eb; letter-spacing: 0.3px; }
    .hero { padding: 28px; }
    h1 { margin: 0 0 14px; font-size: 24px; color: #0f172a; }
    p { margin: 0 0 18px; line-height: 1.6; color: #475569; font-size: 15px; }
    .code { display: inline-block; padding: 12px 24px; background: #f1f5f9;
      border: 1px dashed #cbd5e1; border-radius: 8px; font-family: monospace;
      font-size: 26px; letter-spacing: 6px; color: #0f172a; margin: 8px 0 20px; }
    .btn { display: inline-block; padding: 14px 28px; background: #2563eb;
      color: #ffffff !important; text-decoration: none; border-radius: 8px;
      font-weight: 600; font-size: 15px; margin: 8px 0 20px; }
    .footer { padding: 20px 28px; color: #64748b; font-size: 12px;
      text-align: center; border-top: 1px solid #e2e8f0; background: #f8fafc; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><div class="brand">{{.AppName}}</div></div>
    <div class="hero">
      <h1>{{.Title}}</h1>
      <p>{{.Intro}}</p>
      {{if .Code}}<div class="code">{{.Code}}</div>{{end}}
      {{if .ButtonURL}}<a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a>{{end}}
    </div>
    <div class="footer">© {{.Year}} {{.AppName}}. All rights reserved.</div>
  </div>
</body>
</html>`

const mailTextTemplate = `{{.Title}}

{{.Intro}}

{{if .Code}}Your code: {{.Code}}
{{end}}{{if .ButtonURL}}Open this link:
{{.ButtonURL}}
{{end}}
— {{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data emailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer
	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func (s *smtpMailService) send(to, subject, htmlBody, textBody string) error {
	fromHeader := s.formatFromHeader()
	date := time.Now().Format(time.RFC1123Z)
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = msg.WriteString(fmt.Sprintf(format, a...)) }

	write("From: %s\r\n", fromHeader)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", subject)
	write("Date: %s\r\n", date)
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	write("\r\n")

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 7bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 7bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if s.cfg.UseSSL {
		// SMTPS, implicit TLS (usually port 465)
		tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
		conn, err := tls.Dial("tcp", addr, tlsCfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		c, err := smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			return err
		}
		defer c.Quit()

		return s.transmit(c, auth, to, msg.Bytes())
	}

	// STARTTLS path (typically port 587)
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if ok, _ := c.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
		if err = c.StartTLS(tlsCfg); err != nil {
			return err
		}
	} else if s.cfg.RequireTLS {
		return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
	}

	return s.transmit(c, auth, to, msg.Bytes())
}

func (s *smtpMailService) transmit(c *smtp.Client, auth smtp.Auth, to string, body []byte) error {
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(body); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mimeQuote(name), s.cfg.From)
}

// RFC 2047 encoded-word for non-ASCII display names.
func mimeQuote(v string) string {
	for i := 0; i < len(v); i++ {
		if v[i] > 127 {
			return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(v)))
		}
	}
	return v
}
