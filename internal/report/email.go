package report

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer emails run reports through SES
type Mailer struct {
	emailClient sesiface.SESAPI
	emailTo     string
	emailFrom   string
}

func NewMailer(ec sesiface.SESAPI, emailTo string, emailFrom string) *Mailer {
	return &Mailer{
		emailClient: ec,
		emailTo:     emailTo,
		emailFrom:   emailFrom,
	}
}

// Send emails the summary of r. When attachFileName is not empty the file is attached.
func (m *Mailer) Send(ctx context.Context, r *Report, attachFileName string) error {
	contextLogger := log.WithContext(ctx)
	contextLogger.Infof("Sending run report %s to %s", r.RunID, m.emailTo)

	subject := "Report: HR API smoke test"
	if r.Failed() {
		subject += " (FAILED)"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.emailFrom)
	msg.SetHeader("To", populateEmailRecipients(m.emailTo)...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", r.Summary())
	if attachFileName != "" {
		msg.Attach(attachFileName)
	}

	var emailRaw bytes.Buffer
	if _, err := msg.WriteTo(&emailRaw); err != nil {
		contextLogger.WithError(err).Error("Error when writing email data")
		return err
	}

	emailParams := ses.SendRawEmailInput{
		Source:     aws.String(m.emailFrom),
		RawMessage: &ses.RawMessage{Data: emailRaw.Bytes()},
	}
	emailParams.SetDestinations(aws.StringSlice(populateEmailRecipients(m.emailTo)))

	if _, err := m.emailClient.SendRawEmailWithContext(ctx, &emailParams); err != nil {
		contextLogger.WithError(err).Error("Error when sending email")
		return err
	}
	return nil
}

func populateEmailRecipients(emailTo string) []string {
	var emailRecipients []string
	for _, recipient := range strings.Split(emailTo, ",") {
		if r := strings.TrimSpace(recipient); r != "" {
			emailRecipients = append(emailRecipients, r)
		}
	}
	return emailRecipients
}
