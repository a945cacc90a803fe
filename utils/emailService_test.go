package utils

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"lms/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	bodies chan string
}

func (m *recordingMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	m.bodies <- htmlBody
	return nil
}

// serveSMTP answers one SMTP session on a local port and hands over the DATA payload
func serveSMTP(t *testing.T) (config.MailConfig, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		reply := func(line string) { conn.Write([]byte(line + "\r\n")) }

		reply("220 localhost ESMTP")
		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					received <- data.String()
					reply("250 queued")
					continue
				}
				data.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 localhost")
			case strings.HasPrefix(cmd, "DATA"):
				inData = true
				reply("354 end with <CRLF>.<CRLF>")
			case strings.HasPrefix(cmd, "QUIT"):
				reply("221 bye")
				return
			default:
				reply("250 ok")
			}
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return config.MailConfig{Provider: "smtp", Sender: "noreply@example.com", FromName: "LMS", SMTPHost: host, SMTPPort: port}, received
}

func TestSMTPMailerDelivers(t *testing.T) {
	cfg, received := serveSMTP(t)

	err := NewMailer(cfg).Send(context.Background(), []string{"student@example.com"}, "Welcome\r\nBcc: x@example.com", "<p>Hello</p>")
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Contains(t, msg, "Subject: Welcome Bcc: x@example.com\r\n")
		assert.Contains(t, msg, "To: student@example.com\r\n")
		assert.Contains(t, msg, "<p>Hello</p>")
	case <-time.After(5 * time.Second):
		t.Fatal("message never reached the server")
	}
}

func TestSMTPMailerGivesUpOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		// accept and never greet
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	mailer := NewMailer(config.MailConfig{Provider: "smtp", Sender: "noreply@example.com", SMTPHost: host, SMTPPort: port})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	started := time.Now()
	err = mailer.Send(ctx, []string{"student@example.com"}, "Code", "<p>123456</p>")
	assert.Error(t, err)
	assert.Less(t, time.Since(started), 5*time.Second)
}

func TestTransactionalEmailsEscapeUserInput(t *testing.T) {
	mailer := &recordingMailer{bodies: make(chan string, 1)}
	service := NewEmailService(mailer, "LMS")

	service.SendEnrollmentEmail("student@example.com", "<script>alert(1)</script>", "Go & <b>Friends</b>")

	select {
	case body := <-mailer.bodies:
		assert.NotContains(t, body, "<script>")
		assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
		assert.Contains(t, body, "Go &amp; &lt;b&gt;Friends&lt;/b&gt;")
	case <-time.After(5 * time.Second):
		t.Fatal("enrollment email was not sent")
	}
}
