package utils

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends magic-link sign-in emails over SMTP.
type Mailer struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	baseURL string
}

func NewMailerFromEnv() *Mailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 465
	}
	return &Mailer{
		host:    os.Getenv("SMTP_HOST"),
		port:    port,
		user:    os.Getenv("SMTP_USER"),
		pass:    os.Getenv("SMTP_PASS"),
		from:    os.Getenv("SMTP_SENDER"),
		baseURL: os.Getenv("APP_BASE_URL"),
	}
}

// SendMagicLink emails a one-time sign-in link to the given address.
func (m *Mailer) SendMagicLink(email, token string) {
	link := fmt.Sprintf("%s/auth/verify?token=%s", m.baseURL, url.QueryEscape(token))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your BuyerBase sign-in link")
	msg.SetBody("text/plain",
		"Click the link to sign in: "+link+"\n\n"+
			"The link expires in 15 minutes and can be used once. "+
			"If you did not request it, you can ignore this email.")

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		log.Printf("Failed to send sign-in email to %s: %v", email, err)
		return
	}
	log.Printf("Sign-in email sent to %s", email)
}
