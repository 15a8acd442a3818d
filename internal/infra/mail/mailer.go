package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

// 認証メールに埋める値
type verificationMailData struct {
	Name            string
	Email           string
	VerificationURL string
	ExpiryHours     int
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// DI。プロセス起動時に1度だけ作って閉じるまで使い回す。
func NewSMTPMailer(host string, port int, user string, password string, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// 認証リンク入りのメールを送る
func (m *SMTPMailer) SendVerificationMail(ctx context.Context, name string, email string, verificationURL string) error {
	data := verificationMailData{
		Name:            name,
		Email:           email,
		VerificationURL: verificationURL,
		ExpiryHours:     24,
	}

	html, err := renderVerificationHTML(data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", data.Email)
	msg.SetHeader("Subject", "メールアドレスの確認")
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

func renderVerificationHTML(data verificationMailData) (string, error) {
	tmpl, err := template.New("verifyMail").Parse(verificationTemplate)
	if err != nil {
		return "", fmt.Errorf("parse mail template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}

	return buf.String(), nil
}

const verificationTemplate = `<html>
<body>
  <p>{{.Name}} 様</p>
  <p>ご登録ありがとうございます。下のリンクからメールアドレスの確認をお願いします。</p>
  <p><a href="{{.VerificationURL}}">メールアドレスを確認する</a></p>
  <p>このリンクの有効期限は{{.ExpiryHours}}時間です。</p>
</body>
</html>`
