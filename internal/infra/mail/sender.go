package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`Olá{{if .OwnerName}} {{.OwnerName}}{{end}},

Está na hora da próxima ação com {{.LeadName}}.
{{if .Contact}}
Contato: {{.Contact}}
{{end}}
Agendado para: {{.DueAt.Format "02/01/2006 15:04 MST"}}
{{if .Note}}
Última nota:
{{.Note}}
{{else}}
Nenhuma nota registrada para este lead.
{{end}}`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) buildReminder(to string, data ReminderEmailData) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := reminderTmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("⏰ Lembrete: %s", data.LeadName))
	m.SetBody("text/plain", body.String())
	return m, nil
}

func (s *EmailSender) SendReminder(to string, data ReminderEmailData) error {
	m, err := s.buildReminder(to, data)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
