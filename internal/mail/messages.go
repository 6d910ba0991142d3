package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<p>Welcome to MedSupply Manager!</p>
<p>Please confirm your email address by clicking the link below. The link is
valid for 24 hours.</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>If you did not create an account, you can ignore this message.</p>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>A password reset was requested for your MedSupply Manager account.</p>
<p>Click the link below to choose a new password. The link is valid for one
hour and can be used once.</p>
<p><a href="{{.Link}}">Reset my password</a></p>
<p>If you did not request this, your password is still safe and no action is
needed.</p>
`))

type linkData struct {
	Link string
}

// VerificationMessage builds the subject and body for the email-verification
// mail. The token rides in the path so the frontend route can pick it up.
func VerificationMessage(frontendURL string, token string) (string, string, error) {
	body, err := render(verificationTmpl, linkData{
		Link: fmt.Sprintf("%s/verify-email/%s", frontendURL, token),
	})
	if err != nil {
		return "", "", err
	}
	return "Verify your email address", body, nil
}

// PasswordResetMessage builds the subject and body for the reset mail.
func PasswordResetMessage(frontendURL string, token string) (string, string, error) {
	body, err := render(passwordResetTmpl, linkData{
		Link: fmt.Sprintf("%s/reset-password?token=%s", frontendURL, token),
	})
	if err != nil {
		return "", "", err
	}
	return "Reset your password", body, nil
}

func render(tmpl *template.Template, data linkData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return buf.String(), nil
}
