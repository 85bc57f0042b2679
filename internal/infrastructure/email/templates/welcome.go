package templates

import (
	"bytes"
	"html/template"
	"log"
)

type WelcomeEmailProps struct {
	Name         string
	DashboardURL string
}

var welcomeEmailTemplate = template.Must(template.New("welcomeEmail").Parse(`
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">Hi {{.Name}},</p>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">Your MockDrill account is ready. You can now run phishing awareness drills against your team and follow the results live on the dashboard.</p>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">To get started:</p>
<ol style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px; padding-left: 20px;">
  <li style="margin-bottom: 8px;">Add your Gemini API key in Account Settings</li>
  <li style="margin-bottom: 8px;">Configure a delivery channel (EmailJS, SMS, or WhatsApp)</li>
  <li style="margin-bottom: 8px;">Create your first drill from the dashboard</li>
</ol>
<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="margin: 24px 0;">
  <tr>
    <td style="border-radius: 4px; background-color: #0867ec; text-align: center;">
      <a href="{{.DashboardURL}}" target="_blank" style="border: solid 2px #0867ec; border-radius: 4px; box-sizing: border-box; color: #ffffff; display: inline-block; font-size: 16px; font-weight: bold; padding: 12px 24px; text-decoration: none;">Open Dashboard</a>
    </td>
  </tr>
</table>
<p style="font-family: Helvetica, sans-serif; font-size: 14px; color: #9a9ea6; margin: 0;">Drills are simulations for training purposes. Only target people who are part of an authorized awareness program.</p>`))

// GetWelcomeEmailContent renders the signup welcome email body.
func GetWelcomeEmailContent(props WelcomeEmailProps) string {
	if props.Name == "" {
		props.Name = "there"
	}

	var buf bytes.Buffer
	if err := welcomeEmailTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: Failed to execute welcome email template: %v", err)
		return ""
	}
	return buf.String()
}
