package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const notificationSubject = "Your Web App Has Started!"

type Credentials struct {
	Sender    string
	Password  string
	Recipient string
}

func (c Credentials) Complete() bool {
	return c.Sender != "" && c.Password != "" && c.Recipient != ""
}

type EmailOptions struct {
	Credentials Credentials
	Host        string
	Port        int
	Timeout     time.Duration
}

type sendFunc func(ctx context.Context, opts EmailOptions, msg *mail.Msg) error

// EmailNotifier mails the address the server can be reached at.
type EmailNotifier struct {
	opts EmailOptions
	send sendFunc
}

func NewEmailNotifier(opts EmailOptions) *EmailNotifier {
	return &EmailNotifier{opts: opts, send: dialAndSend}
}

// Notify sends the startup email. Missing credentials skip it without error.
func (n *EmailNotifier) Notify(ctx context.Context, accessURL string, ip string) error {
	if !n.opts.Credentials.Complete() {
		logrus.Info("Email credentials not found. Skipping email.")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.opts.Credentials.Sender); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.opts.Credentials.Recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(notificationSubject)
	msg.SetBodyString(mail.TypeTextPlain, notificationBody(accessURL, ip))

	logrus.WithField("recipient", n.opts.Credentials.Recipient).Info("Attempting to send IP notification email...")
	if err := n.send(ctx, n.opts, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	logrus.Info("Email sent successfully!")
	return nil
}

func notificationBody(accessURL string, ip string) string {
	return fmt.Sprintf("Your local AI web app is now running.\n\n"+
		"You can access it from other devices on your network at:\n"+
		"%s\n\n"+
		"The server is running on the host with IP: %s", accessURL, ip)
}

func dialAndSend(ctx context.Context, opts EmailOptions, msg *mail.Msg) error {
	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.Credentials.Sender),
		mail.WithPassword(opts.Credentials.Password),
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, mail.WithTimeout(opts.Timeout))
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
