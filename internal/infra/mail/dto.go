package mail

import "time"

type ReminderEmailData struct {
	OwnerName string
	LeadName  string
	Contact   string
	Note      string
	DueAt     time.Time
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	dialer dialer
}
