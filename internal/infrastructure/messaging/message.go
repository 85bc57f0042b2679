// Package messaging delivers drill content over the outbound channels (email,
// SMS, WhatsApp) and streams tracking events to connected dashboards.
//
// Every adapter degrades to simulation when its channel credentials are
// absent: the send is logged in full instead of transmitted, and the caller
// is told it was simulated. A drill run therefore never fails just because a
// gateway isn't configured yet.
package messaging

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
)

// Message is one outbound drill delivery.
type Message struct {
	DrillID  string
	Contact  string // email address or phone number, per channel
	Name     string
	Subject  string
	Content  string
	ScamLink string
}

// Sender delivers a message over one channel. Simulated reports whether the
// adapter logged the send instead of calling a real gateway.
type Sender interface {
	Channel() string
	Send(ctx context.Context, cfg *entities.EmailConfig, msg Message) (simulated bool, err error)
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+\d{1,3}\s?\d{8,15}$`)
)

// ValidEmail reports whether s looks like a deliverable email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone accepts international numbers with a country code. Interior
// spaces beyond the first are stripped before matching so "+91 98765 43210"
// style grouping passes.
func ValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " "); i != -1 {
		s = s[:i+1] + strings.ReplaceAll(s[i+1:], " ", "")
	}
	return phonePattern.MatchString(s)
}

// TrackingURLs builds the open-pixel and click-redirect URLs embedded in a
// delivered email.
func TrackingURLs(baseURL, drillID, scamLink string) (pixel, tracked string) {
	pixel = baseURL + "/api/track?id=" + url.QueryEscape(drillID) + "&type=open"
	tracked = baseURL + "/api/track?id=" + url.QueryEscape(drillID) + "&type=click&redirect=" + url.QueryEscape(scamLink)
	return pixel, tracked
}
