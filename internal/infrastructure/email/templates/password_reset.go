package templates

import (
	"bytes"
	"html/template"
	"log"
)

type PasswordResetEmailProps struct {
	Name     string
	ResetURL string
}

var passwordResetEmailTemplate = template.Must(template.New("passwordResetEmail").Parse(`
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">Hi {{.Name}},</p>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">We received a request to reset the password for your MockDrill account. If this was you, use the button below to choose a new password.</p>
<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="margin: 24px 0;">
  <tr>
    <td style="border-radius: 4px; background-color: #0867ec; text-align: center;">
      <a href="{{.ResetURL}}" target="_blank" style="border: solid 2px #0867ec; border-radius: 4px; box-sizing: border-box; color: #ffffff; display: inline-block; font-size: 16px; font-weight: bold; padding: 12px 24px; text-decoration: none;">Reset Password</a>
    </td>
  </tr>
</table>
<p style="font-family: Helvetica, sans-serif; font-size: 14px; color: #9a9ea6; margin: 0;">If you did not request a reset, you can safely ignore this email.</p>`))

// GetPasswordResetEmailContent renders the password reset email body.
func GetPasswordResetEmailContent(props PasswordResetEmailProps) string {
	if props.Name == "" {
		props.Name = "there"
	}

	var buf bytes.Buffer
	if err := passwordResetEmailTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: Failed to execute password reset email template: %v", err)
		return ""
	}
	return buf.String()
}
