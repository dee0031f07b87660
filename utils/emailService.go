package utils

import (
	"context"
	"fmt"
	"html"
	"internhub/config"
	"internhub/models"
	"internhub/services"
	"log"
	"net/smtp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends one HTML message.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SendGridMailer delivers through the SendGrid v3 API.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

func (m *SendGridMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(m.fromName, m.fromEmail))
	message.Subject = subject
	p := mail.NewPersonalization()
	for _, addr := range to {
		p.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/html", htmlBody))

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SMTPMailer is the plain SMTP fallback used when no SendGrid key is configured.
type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	FromName string
	Password string
}

func (m SMTPMailer) Send(_ context.Context, to []string, subject, htmlBody string) error {
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", m.FromName, m.From)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, to, []byte(msg))
}

// NewMailerFromConfig picks SendGrid when an API key is set, SMTP otherwise.
// It returns nil when no sender address is configured.
func NewMailerFromConfig(cfg *config.Config) Mailer {
	if cfg.EmailSender == "" {
		return nil
	}
	if cfg.SendGridAPIKey != "" {
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName)
	}
	return SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.EmailSender,
		FromName: cfg.EmailSenderName,
		Password: cfg.Password,
	}
}

// EmailNotifier turns workflow events into emails.
type EmailNotifier struct {
	mailer      Mailer
	users       services.UserStore
	frontendURL string
	brand       string
	// async sends in a goroutine so the request never waits on the mail server.
	async bool
}

func NewEmailNotifier(mailer Mailer, users services.UserStore, frontendURL, brand string) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, users: users, frontendURL: frontendURL, brand: brand, async: true}
}

func (n *EmailNotifier) Notify(ctx context.Context, e services.Event) error {
	if n.mailer == nil {
		return nil
	}
	to, err := n.recipients(ctx, e)
	if err != nil {
		return err
	}
	if len(to) == 0 {
		return nil
	}
	subject, title, body := n.render(e)
	page := getEmailTemplate(n.brand, title, body)

	if !n.async {
		return n.mailer.Send(ctx, to, subject, page)
	}
	go func() {
		if err := n.mailer.Send(context.Background(), to, subject, page); err != nil {
			log.Printf("[NOTIFY] email %s for internship %d failed: %v", e.Kind, e.Internship.ID, err)
		}
	}()
	return nil
}

func (n *EmailNotifier) recipients(ctx context.Context, e services.Event) ([]string, error) {
	in := e.Internship
	switch e.Kind {
	case services.EventSubmitted, services.EventUnclaimedReminder:
		instructors, err := n.users.FindInstructorsBySector(ctx, in.SectorID)
		if err != nil {
			return nil, err
		}
		to := make([]string, 0, len(instructors))
		for _, u := range instructors {
			to = append(to, u.Email)
		}
		return to, nil
	case services.EventReassigned:
		to, err := n.studentEmail(ctx, in)
		if err != nil {
			return nil, err
		}
		if in.InstructorID != nil {
			instructor, err := n.users.FindByID(ctx, *in.InstructorID)
			if err != nil {
				return nil, err
			}
			to = append(to, instructor.Email)
		}
		return to, nil
	default:
		return n.studentEmail(ctx, in)
	}
}

func (n *EmailNotifier) studentEmail(ctx context.Context, in models.Internship) ([]string, error) {
	if in.Student != nil && in.Student.Email != "" {
		return []string{in.Student.Email}, nil
	}
	student, err := n.users.FindByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	return []string{student.Email}, nil
}

func (n *EmailNotifier) render(e services.Event) (subject, title, body string) {
	in := e.Internship
	name := fmt.Sprintf("<strong>%s</strong> at <strong>%s</strong>", html.EscapeString(in.Title), html.EscapeString(in.CompanyName))
	link := fmt.Sprintf(`<a href="%s/internships/%d" class="btn">Open internship</a>`, n.frontendURL, in.ID)
	student := "A student"
	if in.Student != nil && in.Student.FullName() != "" {
		student = html.EscapeString(in.Student.FullName())
	}

	switch e.Kind {
	case services.EventSubmitted:
		return "New internship to review: " + in.Title, "Internship Submitted",
			fmt.Sprintf(`<p>%s submitted %s for validation in your sector.</p><p>Claim it to become its reviewer.</p>%s`, student, name, link)
	case services.EventUnclaimedReminder:
		return "Still waiting for a reviewer: " + in.Title, "Internship Awaiting Review",
			fmt.Sprintf(`<p>%s from %s has been pending since %s and nobody has claimed it yet.</p>%s`, name, student, formatDate(in.SubmittedAt), link)
	case services.EventClaimed:
		return "Your internship is under review", "Review Started",
			fmt.Sprintf(`<p>An instructor is now reviewing %s.</p>%s`, name, link)
	case services.EventValidated:
		return "Internship validated: " + in.Title, "Internship Validated",
			fmt.Sprintf(`<p>Great news! %s has been <strong>VALIDATED</strong>.</p>%s`, name, link)
	case services.EventRefused:
		return "Internship refused: " + in.Title, "Internship Refused",
			fmt.Sprintf(`<p>%s was refused.</p><div class="info-box"><strong>Reason:</strong> %s</div><p>Update it and submit again.</p>%s`,
				name, html.EscapeString(e.Comment), link)
	case services.EventReassigned:
		return "Reviewer changed: " + in.Title, "Reviewer Reassigned",
			fmt.Sprintf(`<p>An administrator assigned a new instructor to %s.</p>%s`, name, link)
	case services.EventStarted:
		return "Internship started: " + in.Title, "Internship Started",
			fmt.Sprintf(`<p>%s starts today. Good luck!</p>%s`, name, link)
	case services.EventCompleted:
		return "Internship completed: " + in.Title, "Internship Completed",
			fmt.Sprintf(`<p>%s is now complete.</p>%s`, name, link)
	}
	return "Internship update: " + in.Title, "Internship Update", fmt.Sprintf(`<p>%s changed.</p>%s`, name, link)
}

func getEmailTemplate(brand, title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1D3557; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1D3557; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #E63946; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #F1FAEE; padding: 15px; border-radius: 4px; border-left: 4px solid #E63946; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You receive this email because you take part in an internship workflow.</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(strings.ToUpper(brand)), title, bodyContent)
}
