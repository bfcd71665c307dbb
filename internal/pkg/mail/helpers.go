package mail

import (
	"html/template"
	"strings"
)

type actionMailData struct {
	ActionURL string
}

func renderActionMail(tpl, actionURL string) (string, error) {
	t, err := template.New("").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := t.Execute(&buf, actionMailData{ActionURL: actionURL}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendVerifyEmail mails an email-verification link.
func (s *Sender) SendVerifyEmail(to, actionURL string) error {
	html, err := renderActionMail(verifyEmailTpl, actionURL)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: "Verify your email address",
		HTML:    html,
	})
}

// SendPasswordReset mails a password-reset link.
func (s *Sender) SendPasswordReset(to, actionURL string) error {
	html, err := renderActionMail(resetPasswordTpl, actionURL)
	if err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: "Reset your password",
		HTML:    html,
	})
}
