package entities

import "strings"

// ScamLinkPlaceholder is the literal token the draft generator embeds where
// the decoy URL belongs. The wizard substitutes it before display.
const ScamLinkPlaceholder = "[SCAM_LINK]"

// DraftEmail is the generated phishing draft reviewed in the second wizard
// stage. Regeneration replaces the value wholesale; accepted drafts become
// immutable input to delivery.
type DraftEmail struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	ScamLink string `json:"scamLink"`
}

// WithScamLink returns a copy with the placeholder token replaced by link and
// ScamLink recorded.
func (d DraftEmail) WithScamLink(link string) DraftEmail {
	d.Body = strings.ReplaceAll(d.Body, ScamLinkPlaceholder, link)
	d.ScamLink = link
	return d
}

// DeliveryContent carries the accepted draft into the delivery stage. Content
// is the legacy combined blob (body plus a labeled scam-link line); the
// structured fields are authoritative.
type DeliveryContent struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	ScamLink string `json:"scamLink"`
	Content  string `json:"content"`
}

// ComposeContent builds the combined content blob from an accepted draft.
func ComposeContent(d DraftEmail) string {
	return d.Body + "\n\nScam Link: " + d.ScamLink
}

// ParseContent recovers body and scam link from a combined content blob. It
// exists only for compatibility with payloads produced by older clients that
// never carried the structured fields.
func ParseContent(content string) (body, scamLink string) {
	lines := strings.Split(content, "\n")
	idx := -1
	for i, line := range lines {
		if strings.Contains(line, "Scam Link:") {
			idx = i
			break
		}
	}
	if idx == -1 {
		return content, "https://example.com/verify"
	}
	scamLink = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[idx]), "Scam Link:"))
	body = strings.TrimRight(strings.Join(lines[:idx], "\n"), "\n")
	return body, scamLink
}
