package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// CompletionNotice summarises a finished drafting session.
type CompletionNotice struct {
	SessionID string
	Title     string
	Score     int
	RiskLevel string
	Sections  int
}

type IEmailService interface {
	SendCompletionNotice(toEmail string, notice CompletionNotice) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	baseURL     string
}

func NewEmailService(host string, port int, username, password, senderEmail, baseURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		baseURL:     baseURL,
	}
}

func (s *emailService) SendCompletionNotice(toEmail string, n CompletionNotice) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Contract ready for review: %s", n.Title))
	m.SetBody("text/html", completionBody(s.baseURL, n))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send completion notice for %s: %w", n.SessionID, err)
	}
	return nil
}

func completionBody(baseURL string, n CompletionNotice) string {
	link := fmt.Sprintf("%s/api/contract/v1/contracts/%s", baseURL, n.SessionID)
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>A drafting session finished with %d sections.</p>
			<p>AI score: <strong>%d/100</strong> (risk: %s)</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open contract</a>
		</div>
	`, html.EscapeString(n.Title), n.Sections, n.Score, html.EscapeString(n.RiskLevel), link)
}
