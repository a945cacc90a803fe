package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers one HTML email
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// NewMailer picks the delivery backend named by MAIL_PROVIDER
func NewMailer(cfg config.MailConfig) Mailer {
	switch cfg.Provider {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			log.Println("[Mailer] SENDGRID_API_KEY missing, falling back to console delivery")
			return ConsoleMailer{}
		}
		return NewSendGridMailer(cfg)
	case "smtp":
		return SMTPMailer{cfg: cfg}
	default:
		return ConsoleMailer{}
	}
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(cfg config.MailConfig) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.Sender),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	for _, addr := range to {
		message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", addr), stripTags(htmlBody), htmlBody)
		resp, err := m.client.Send(message)
		if err != nil {
			return fmt.Errorf("sendgrid: %w", err)
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
		}
	}
	return nil
}

type SMTPMailer struct {
	cfg config.MailConfig
}

// course titles end up in the subject; keep them on one header line
var headerReplacer = strings.NewReplacer("\r", "", "\n", " ")

// smtpTimeout bounds a delivery when the caller's context carries no deadline
const smtpTimeout = 30 * time.Second

func (m SMTPMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, smtpTimeout)
		defer cancel()
	}
	from := m.cfg.Sender

	// MIME basics
	msg := "MIME-version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", m.cfg.FromName, from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", headerReplacer.Replace(subject))
	msg += htmlBody

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.cfg.SMTPHost, m.cfg.SMTPPort))
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if ok, _ := client.Extension("AUTH"); ok && m.cfg.SMTPPassword != "" {
		if err := client.Auth(smtp.PlainAuth("", from, m.cfg.SMTPPassword, m.cfg.SMTPHost)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", addr, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return client.Quit()
}

// ConsoleMailer prints the message instead of sending it
type ConsoleMailer struct{}

func (ConsoleMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	log.Printf("[Mailer] console delivery\nTo: %v\nSubject: %s\n%s", to, subject, stripTags(htmlBody))
	return nil
}

var tagReplacer = strings.NewReplacer("<p>", "", "</p>", "\n", "<strong>", "", "</strong>", "", "<br>", "\n")

func stripTags(body string) string {
	return strings.TrimSpace(tagReplacer.Replace(body))
}

// EmailService renders the transactional templates on top of a Mailer
type EmailService struct {
	Mailer  Mailer
	AppName string
}

func NewEmailService(m Mailer, appName string) *EmailService {
	if appName == "" {
		appName = "LMS"
	}
	return &EmailService{Mailer: m, AppName: appName}
}

func (s *EmailService) wrap(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #F6F6F6; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background: #FFFFFF; border-radius: 8px; padding: 30px;">
		<h2>%s</h2>
		%s
		<p style="font-size: 12px; color: #999999; margin-top: 30px;">%s Team</p>
	</div>
</body>
</html>`, title, body, s.AppName)
}

// otpDeliveryTimeout caps how long a register or resend request waits on the mail backend
const otpDeliveryTimeout = 10 * time.Second

// DeliverOTP sends the verification code synchronously so the caller can fall back on failure
func (s *EmailService) DeliverOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, otpDeliveryTimeout)
	defer cancel()

	subject := "Your " + s.AppName + " verification code"
	body := fmt.Sprintf(`<p>Your one time password is:</p>
		<h1 style="letter-spacing: 4px;">%s</h1>
		<p>It expires at %s UTC. Do not share it with anyone.</p>`, code, expiresAt.UTC().Format("15:04"))
	return s.Mailer.Send(ctx, []string{email}, subject, s.wrap("Email Verification", body))
}

func (s *EmailService) send(to, subject, title, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Mailer.Send(ctx, []string{to}, subject, s.wrap(title, body)); err != nil {
			log.Printf("[Mailer] %q to %s failed: %v", subject, to, err)
		}
	}()
}

// SendEnrollmentEmail notifies a student that an enrollment was created
func (s *EmailService) SendEnrollmentEmail(email, name, courseTitle string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
		<p>You have successfully enrolled in <strong>%s</strong>.</p>
		<p>Complete every lesson to earn your certificate.</p>`, html.EscapeString(name), html.EscapeString(courseTitle))
	s.send(email, "Enrollment confirmed: "+courseTitle, "Enrollment Successful", body)
}

func (s *EmailService) SendCertificateEmail(email, name, courseTitle, certificateID string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>.</p>
		<p>Your certificate number is <strong>%s</strong>.</p>`, html.EscapeString(name), html.EscapeString(courseTitle), html.EscapeString(certificateID))
	s.send(email, "Certificate issued: "+courseTitle, "Certificate of Completion", body)
}

func (s *EmailService) SendPaymentReceiptEmail(email, name, courseTitle string, amount float64, currency string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
		<p>We received your payment of <strong>%s %.2f</strong> for <strong>%s</strong>.</p>
		<p>You are now enrolled.</p>`, html.EscapeString(name), html.EscapeString(currency), amount, html.EscapeString(courseTitle))
	s.send(email, "Payment received: "+courseTitle, "Payment Confirmed", body)
}

func (s *EmailService) SendContactAcknowledgement(email, name string) {
	body := fmt.Sprintf(`<p>Dear %s,</p>
		<p>Thanks for reaching out. Our team will get back to you shortly.</p>`, html.EscapeString(name))
	s.send(email, "We received your message", "Message Received", body)
}
