package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// SendInvitationEmail delivers the invite link. Delivery is best effort; the
// invitation stays valid even when the email fails and the token can be
// shared manually.
func SendInvitationEmail(toEmail, inviterName, ledgerName, invitationToken string) error {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	invitationLink := fmt.Sprintf("%s/invitation/accept?token=%s", frontendURL, invitationToken)

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		// No SMTP configured (local/dev). Log the link instead of failing.
		log.Printf("📧 SMTP not configured, invitation link for %s: %s", toEmail, invitationLink)
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	body := fmt.Sprintf(
		"Subject: %s invited you to the ledger %q\r\nFrom: %s\r\nTo: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s invited you to join the shared ledger %q on FaMoney.\r\n\r\nAccept the invitation: %s\r\n",
		inviterName, ledgerName, from, toEmail, inviterName, ledgerName, invitationLink,
	)

	auth := smtp.PlainAuth("", user, password, host)
	return smtp.SendMail(host+":"+port, auth, from, []string{toEmail}, []byte(body))
}
