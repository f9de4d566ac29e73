package utils

import (
	"fmt"
	"html"
	"strings"
	"time"

	"paddock/config"
	"paddock/logger"
	"paddock/metrics"
	"paddock/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(toEmail, toName, subject, htmlBody string) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (m *SendGridMailer) Send(toEmail, toName, subject, htmlBody string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, stripTags(htmlBody), htmlBody)

	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs outgoing mail. Used when no provider key is configured.
type LogMailer struct{}

func (LogMailer) Send(toEmail, toName, subject, htmlBody string) error {
	logger.Log.Info("email (not delivered, no provider configured)",
		logger.String("to", toEmail),
		logger.String("subject", subject),
	)
	return nil
}

// EmailSender is the mailer used by every trigger below.
var EmailSender Mailer = LogMailer{}

// InitMailer picks the mailer from configuration.
func InitMailer() {
	cfg := config.AppConfig
	if cfg.SendGridAPIKey == "" {
		logger.Log.Warning("SENDGRID_API_KEY not set, emails will only be logged")
		EmailSender = LogMailer{}
		return
	}
	EmailSender = NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName)
}

// SendEmail delivers synchronously and records the outcome.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if strings.TrimSpace(toEmail) == "" {
		return nil
	}
	if err := EmailSender.Send(toEmail, toName, subject, htmlBody); err != nil {
		metrics.RecordEmail("failed")
		logger.Log.Error("error sending email",
			logger.String("to", toEmail),
			logger.String("subject", subject),
			logger.Error(err),
		)
		return err
	}
	metrics.RecordEmail("sent")
	return nil
}

// sendAsync fires an email without blocking the caller; failures are logged
// by SendEmail and never reach the request.
func sendAsync(toEmail, toName, subject, htmlBody string) {
	go func() {
		_ = SendEmail(toEmail, toName, subject, htmlBody)
	}()
}

func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F4F4; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #111111; padding: 24px; text-align: center; border-bottom: 4px solid #E10600; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; letter-spacing: 2px; }
			.content { padding: 32px 28px; color: #222222; line-height: 1.6; }
			.info-box { background: #F7F7F7; padding: 14px; border-radius: 4px; border-left: 4px solid #E10600; margin: 18px 0; }
			.btn { display: inline-block; padding: 12px 22px; background-color: #E10600; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; }
			.footer { padding: 18px; text-align: center; font-size: 12px; color: #777777; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>PADDOCK</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; %d Paddock. Motorsport rentals between enthusiasts.</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(title), bodyContent, time.Now().Year())
}

func link(path string) string {
	return strings.TrimRight(config.AppConfig.AppURL, "/") + path
}

// --- Triggers ---

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Welcome to <strong>Paddock</strong>. Browse track-ready machinery near you or list your own.</p>
	`, html.EscapeString(name))
	sendAsync(email, name, "Welcome to Paddock", getEmailTemplate("Welcome to the grid!", body))
}

// SendOTPEmail is synchronous: the caller reports delivery failures.
func SendOTPEmail(email, name, otp, purpose string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your one time code for %s is:</p>
		<h1 style="letter-spacing: 6px;">%s</h1>
		<p>It expires in 5 minutes. Do not share it with anyone.</p>
	`, html.EscapeString(name), html.EscapeString(purpose), otp)
	return SendEmail(email, name, "Your Paddock verification code", getEmailTemplate("Verification code", body))
}

// ReservationEmail carries what the reservation notifications show.
type ReservationEmail struct {
	ReservationID uint
	VehicleTitle  string
	StartDate     time.Time
	EndDate       time.Time
	TotalCents    int64
	Reason        string
}

func (r ReservationEmail) summary() string {
	return fmt.Sprintf(`
		<div class="info-box">
			<strong>%s</strong><br>
			%s to %s<br>
			Total: %s %s
		</div>
	`, html.EscapeString(r.VehicleTitle), r.StartDate.Format(DayLayout), r.EndDate.Format(DayLayout),
		FormatCents(r.TotalCents), strings.ToUpper(config.AppConfig.Currency))
}

func SendReservationRequestedEmail(ownerEmail, ownerName, renterName string, r ReservationEmail) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p><strong>%s</strong> wants to rent your vehicle.</p>
		%s
		<a class="btn" href="%s">Review request</a>
	`, html.EscapeString(ownerName), html.EscapeString(renterName), r.summary(), link(fmt.Sprintf("/reservations/%d", r.ReservationID)))
	sendAsync(ownerEmail, ownerName, "New rental request: "+r.VehicleTitle, getEmailTemplate("New rental request", body))
}

func SendReservationStatusEmail(email, name, status string, r ReservationEmail) {
	title := "Reservation " + status
	reason := ""
	if r.Reason != "" {
		reason = fmt.Sprintf(`<p>Reason: %s</p>`, html.EscapeString(r.Reason))
	}
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your reservation is now <strong>%s</strong>.</p>
		%s
		%s
	`, html.EscapeString(name), html.EscapeString(status), r.summary(), reason)
	sendAsync(email, name, fmt.Sprintf("%s: %s", title, r.VehicleTitle), getEmailTemplate(title, body))
}

func SendNewMessageEmail(email, name, senderName, preview string, conversationID uint) {
	if len(preview) > 140 {
		preview = preview[:140] + "..."
	}
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p><strong>%s</strong> sent you a message:</p>
		<div class="info-box"><em>%s</em></div>
		<a class="btn" href="%s">Reply</a>
	`, html.EscapeString(name), html.EscapeString(senderName), html.EscapeString(preview), link(fmt.Sprintf("/messages/%d", conversationID)))
	sendAsync(email, name, "New message from "+senderName, getEmailTemplate("New message", body))
}

func SendDisputeOpenedEmail(adminEmail, adminName string, disputeID, reservationID uint, category string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Dispute #%d was opened on reservation #%d (category: %s).</p>
	`, html.EscapeString(adminName), disputeID, reservationID, html.EscapeString(category))
	sendAsync(adminEmail, adminName, fmt.Sprintf("Dispute #%d opened", disputeID), getEmailTemplate("Dispute opened", body))
}

func SendDisputeResolvedEmail(email, name string, disputeID uint, resolution string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Dispute #%d has been resolved.</p>
		<div class="info-box">%s</div>
	`, html.EscapeString(name), disputeID, html.EscapeString(resolution))
	sendAsync(email, name, fmt.Sprintf("Dispute #%d resolved", disputeID), getEmailTemplate("Dispute resolved", body))
}

// DigestLine is one pending request in an owner digest.
type DigestLine struct {
	VehicleTitle string
	StartDate    time.Time
	EndDate      time.Time
}

// SendOwnerDigestEmail is synchronous so the scheduler can count deliveries.
func SendOwnerDigestEmail(email, name string, lines []DigestLine) error {
	var items strings.Builder
	for _, l := range lines {
		items.WriteString(fmt.Sprintf("<li>%s: %s to %s</li>", html.EscapeString(l.VehicleTitle),
			l.StartDate.Format(DayLayout), l.EndDate.Format(DayLayout)))
	}
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You have <strong>%d</strong> rental request(s) waiting for an answer:</p>
		<ul>%s</ul>
		<a class="btn" href="%s">Open dashboard</a>
	`, html.EscapeString(name), len(lines), items.String(), link("/reservations/owner"))
	return SendEmail(email, name, fmt.Sprintf("%d pending rental request(s)", len(lines)), getEmailTemplate("Daily digest", body))
}

// ReservationEmailFor builds the notification summary from a reservation
// with its Vehicle loaded.
func ReservationEmailFor(r models.Reservation) ReservationEmail {
	return ReservationEmail{
		ReservationID: r.ID,
		VehicleTitle:  r.Vehicle.Title,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		TotalCents:    r.TotalCents,
		Reason:        r.Reason,
	}
}
