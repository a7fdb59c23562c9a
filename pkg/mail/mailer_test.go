package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSMTPClient struct {
	from    string
	rcpt    string
	data    bytes.Buffer
	quit    bool
	authed  bool
	mailErr error
}

func (f *fakeSMTPClient) Mail(from string) error {
	if f.mailErr != nil {
		return f.mailErr
	}
	f.from = from
	return nil
}

func (f *fakeSMTPClient) Rcpt(to string) error { f.rcpt = to; return nil }

func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.data}, nil
}

func (f *fakeSMTPClient) Quit() error  { f.quit = true; return nil }
func (f *fakeSMTPClient) Close() error { return nil }

func (f *fakeSMTPClient) StartTLS(*tls.Config) error { return nil }

func (f *fakeSMTPClient) Auth(smtp.Auth) error { f.authed = true; return nil }

func (f *fakeSMTPClient) Extension(string) (bool, string) { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newFakeMailer(cfg SMTPSettings, client *fakeSMTPClient) *smtpMailer {
	return &smtpMailer{
		cfg: cfg,
		dialFn: func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
			server, discard := net.Pipe()
			_ = discard.Close()
			return server, client, nil
		},
		authFn: defaultAuthFunc,
	}
}

func TestSendWritesFormattedMessage(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "outreach@citydex.example",
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      "owner@example.com",
		Subject: "Claim your listing",
		Body:    "<p>hello</p>",
	})
	require.NoError(t, err)

	require.Equal(t, "outreach@citydex.example", client.from)
	require.Equal(t, "owner@example.com", client.rcpt)
	require.True(t, client.quit)

	payload := client.data.String()
	require.Contains(t, payload, "From: outreach@citydex.example\r\n")
	require.Contains(t, payload, "To: owner@example.com\r\n")
	require.Contains(t, payload, "Subject: Claim your listing\r\n")
	require.Contains(t, payload, "Content-Type: text/html; charset=UTF-8\r\n")
	require.Contains(t, payload, "\r\n\r\n<p>hello</p>")
}

func TestSendEscapesHeaderInjection(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "outreach@citydex.example",
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      "owner@example.com",
		Subject: "line one\r\nBcc: sneaky@example.com",
		Body:    "body",
	})
	require.NoError(t, err)
	// The CRLF is stripped, so no extra header line can be injected.
	require.NotContains(t, client.data.String(), "\r\nBcc:")
	require.Contains(t, client.data.String(), "Subject: line one  Bcc: sneaky@example.com\r\n")
}

func TestSendDisabled(t *testing.T) {
	mailer := newFakeMailer(SMTPSettings{Enabled: false}, &fakeSMTPClient{})

	err := mailer.Send(context.Background(), Message{To: "owner@example.com"})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSendValidatesAddresses(t *testing.T) {
	cfg := SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587, From: "outreach@citydex.example"}

	mailer := newFakeMailer(cfg, &fakeSMTPClient{})
	require.Error(t, mailer.Send(context.Background(), Message{To: ""}))
	require.Error(t, mailer.Send(context.Background(), Message{To: "not-an-address"}))

	noFrom := newFakeMailer(SMTPSettings{Enabled: true, Host: "h", Port: 1}, &fakeSMTPClient{})
	require.Error(t, noFrom.Send(context.Background(), Message{To: "owner@example.com"}))
}

func TestSendPropagatesServerErrors(t *testing.T) {
	client := &fakeSMTPClient{mailErr: errors.New("550 rejected")}
	mailer := newFakeMailer(SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "outreach@citydex.example",
	}, client)

	err := mailer.Send(context.Background(), Message{To: "owner@example.com"})
	require.ErrorContains(t, err, "550 rejected")
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.Error(t, err)

	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, mailer)
}
