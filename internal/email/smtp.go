package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPSender struct {
	host     string
	port     string
	user     string
	pass     string
	from     string
	fromName string
}

func NewSMTPSender(host, port, user, pass, from, fromName string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from, fromName: fromName}
}

func (s *SMTPSender) Send(job Job) error {
	return smtp.SendMail(s.host+":"+s.port, s.auth(), s.from, []string{job.To}, s.message(job))
}

func (s *SMTPSender) auth() smtp.Auth {
	if s.user == "" || s.pass == "" {
		return nil
	}
	return smtp.PlainAuth("", s.user, s.pass, s.host)
}

func (s *SMTPSender) message(job Job) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.fromName, s.from)
	fmt.Fprintf(&b, "To: %s\r\n", job.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", job.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(job.Body)
	return []byte(b.String())
}
