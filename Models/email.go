package Models

import (
	"os"
	"strconv"
)

type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	TLSEnabled bool
}

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To      []string
	CC      []string
	Subject string
	Body    string
	IsHTML  bool
}

// EmailConfigFromEnv builds the SMTP configuration from environment
// variables (MH_SMTP_SERVER, MH_SMTP_PORT, MH_SMTP_USER, MH_SMTP_PASS,
// MH_SMTP_FROM, MH_SMTP_FROM_NAME).
func EmailConfigFromEnv() EmailConfig {
	port, err := strconv.Atoi(os.Getenv("MH_SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	return EmailConfig{
		SMTPServer: os.Getenv("MH_SMTP_SERVER"),
		SMTPPort:   port,
		Username:   os.Getenv("MH_SMTP_USER"),
		Password:   os.Getenv("MH_SMTP_PASS"),
		FromEmail:  os.Getenv("MH_SMTP_FROM"),
		FromName:   os.Getenv("MH_SMTP_FROM_NAME"),
		TLSEnabled: true,
	}
}
