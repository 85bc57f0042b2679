// Package genai calls the Gemini generateContent REST API to draft
// personalized training emails. The wire format is pinned to the v1 models
// endpoint rather than an SDK so the request and response shapes stay exactly
// what the service documents.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
)

// Client drafts phishing training emails from a target profile.
type Client struct {
	endpoint    string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewClient creates a Gemini client against the given generateContent
// endpoint.
func NewClient(endpoint string, maxTokens int) *Client {
	return &Client{
		endpoint:    endpoint,
		maxTokens:   maxTokens,
		temperature: 0.9,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ValidateAPIKey performs the cheap shape check used before any network call:
// Gemini keys start with "AIza" and run longer than 30 characters.
func ValidateAPIKey(apiKey string) bool {
	return strings.HasPrefix(apiKey, "AIza") && len(apiKey) > 30
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateDraft asks the model for a fresh draft keyed to the profile. The
// optional suggestion steers the scenario on regeneration. The returned draft
// still carries the scam-link placeholder in its body.
func (c *Client) GenerateDraft(ctx context.Context, apiKey string, profile entities.TargetProfile, suggestion string) (entities.DraftEmail, error) {
	if apiKey == "" {
		return entities.DraftEmail{}, fmt.Errorf("gemini api key: %w", errs.ErrMissingCredential)
	}
	if !ValidateAPIKey(apiKey) {
		return entities.DraftEmail{}, fmt.Errorf("gemini api key has invalid format: %w", errs.ErrMissingCredential)
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(profile, suggestion)}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return entities.DraftEmail{}, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := c.endpoint + "?key=" + apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return entities.DraftEmail{}, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.DraftEmail{}, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return entities.DraftEmail{}, fmt.Errorf("failed to read gemini response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return entities.DraftEmail{}, fmt.Errorf("%w: not JSON", errs.ErrMalformedResponse)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return entities.DraftEmail{}, fmt.Errorf("gemini request failed: %d - %s", resp.StatusCode, msg)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return entities.DraftEmail{}, fmt.Errorf("%w: no candidates", errs.ErrMalformedResponse)
	}
	text := parsed.Candidates[0].Content.Parts[0].Text

	draft, err := extractDraft(text)
	if err != nil {
		return entities.DraftEmail{}, err
	}
	return draft, nil
}

// extractDraft pulls the first JSON object out of the model's reply. Replies
// often wrap the object in markdown fences or prose.
func extractDraft(text string) (entities.DraftEmail, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return entities.DraftEmail{}, fmt.Errorf("%w: no JSON object in reply", errs.ErrMalformedResponse)
	}

	var draft struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &draft); err != nil {
		return entities.DraftEmail{}, fmt.Errorf("%w: %v", errs.ErrMalformedResponse, err)
	}
	if draft.Subject == "" || draft.Body == "" {
		return entities.DraftEmail{}, fmt.Errorf("%w: missing subject or body", errs.ErrMalformedResponse)
	}
	return entities.DraftEmail{Subject: draft.Subject, Body: draft.Body}, nil
}

func buildPrompt(p entities.TargetProfile, suggestion string) string {
	var b strings.Builder

	b.WriteString("You are a creative security professional that generates realistic phishing/scam emails for cybersecurity training. Create a UNIQUE and PERSONALIZED scam email based on the target's profile.\n\n")

	b.WriteString("TARGET PROFILE:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Age: %s\n", p.Age)
	fmt.Fprintf(&b, "Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "Department: %s\n", p.Department)
	fmt.Fprintf(&b, "City: %s\n", p.City)
	fmt.Fprintf(&b, "Date of Birth: %s\n", p.DateOfBirth)
	fmt.Fprintf(&b, "Hobbies: %s\n", p.Hobbies)
	fmt.Fprintf(&b, "Family Info: %s\n", p.FamilyInfo)
	fmt.Fprintf(&b, "Social Info: %s\n", p.SocialInfo)
	fmt.Fprintf(&b, "Employee History: %s\n", p.EmployeeHistory)
	fmt.Fprintf(&b, "Additional Info: %s\n\n", p.AdditionalInfo)

	if suggestion != "" {
		fmt.Fprintf(&b, "SPECIAL REQUEST: %s\n\n", suggestion)
	}

	fmt.Fprintf(&b, "CRITICAL GREETING REQUIREMENT:\n- The email MUST start with \"Dear %s,\" - use their EXACT name, not \"Dear User\" or \"Dear Customer\"\n- This is mandatory and non-negotiable\n\n", p.Name)

	b.WriteString(`CREATIVE INSTRUCTIONS:
1. Analyze the target's profile including their EMPLOYEE HISTORY and create a STORY/SCENARIO that would appeal to THEM specifically
2. Use their work experience, department, location, hobbies, or family situation to craft a believable scenario
3. Leverage their professional background and skills mentioned in employee history for more targeted attacks
4. Make each email COMPLETELY DIFFERENT - vary the scam type, tone, urgency level, and approach
5. Create realistic backstories and context that match their professional and personal profile

SCAM SCENARIOS TO VARY BETWEEN:
- Work-related: IT security updates, HR policy changes, salary/bonus notifications, professional development opportunities
- Career-focused: Job opportunities, certification renewals, professional memberships, industry conferences
- Banking/Financial: Account verification, suspicious activity alerts, payment confirmations
- Government: Tax refunds, professional license renewals, compliance requirements
- Personal: Prize winnings, insurance claims, utility bills, subscription renewals
- Social: Professional networking, industry events, colleague recommendations
- Location-based: Local business services, city-specific professional services
- Skill-based: Training opportunities, software updates, tool subscriptions relevant to their background

CREATIVE STORYTELLING RULES:
1. NEVER repeat the same scenario twice - be creative and unique each time
`)
	fmt.Fprintf(&b, "2. MUST start with \"Dear %s,\" - this is mandatory\n", p.Name)
	b.WriteString(`3. Create believable urgency relevant to their professional situation
4. Include realistic details that match their work background and experience level
5. Add authentic-sounding contact details using realistic formats like:
   - Phone numbers: +1 (555) 123-4567, +44 20 7123 4567, +91 98765 43210
   - Email addresses: support@company-name.com, noreply@service-name.org, security@platform-name.net
6. Use [SCAM_LINK] placeholder for the malicious link
7. Make the language professional but with subtle scam indicators
8. Create emotional hooks relevant to their career stage and personal situation
9. Vary the sender identity (companies, services, professional bodies, training organizations)
10. Include time pressure that feels realistic for their professional context
11. NEVER use the word "fake" or any variations - use realistic placeholder information instead
12. Use realistic company names, service names, and contact information

TONE VARIATIONS:
- Sometimes urgent and professional
- Sometimes helpful and informative
- Sometimes exciting (opportunities, advancement)
- Sometimes official and bureaucratic
- Always convincing for someone with their background and experience level

Make the email feel like it was specifically crafted for this person based on their professional history and personal information. Tell a story that connects to their work experience and current role.

Respond with ONLY a JSON object:
{
  "subject": "Professional subject line relevant to their work background and situation",
`)
	fmt.Fprintf(&b, "  \"body\": \"Personalized email body starting with 'Dear %s,' and incorporating their employee history and professional context with [SCAM_LINK] placeholder\"\n}", p.Name)

	return b.String()
}
