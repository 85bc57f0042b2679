package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailJSConfigIsConfigured(t *testing.T) {
	tests := []struct {
		serviceID  string
		templateID string
		publicKey  string
		want       bool
	}{
		{"", "", "", false},
		{"svc", "", "", false},
		{"", "tpl", "", false},
		{"", "", "pk", false},
		{"svc", "tpl", "", false},
		{"svc", "", "pk", false},
		{"", "tpl", "pk", false},
		{"svc", "tpl", "pk", true},
	}
	for _, tt := range tests {
		cfg := &EmailJSConfig{ServiceID: tt.serviceID, TemplateID: tt.templateID, PublicKey: tt.publicKey}
		assert.Equal(t, tt.want, cfg.IsConfigured(),
			"serviceId=%q templateId=%q publicKey=%q", tt.serviceID, tt.templateID, tt.publicKey)
	}

	var nilCfg *EmailJSConfig
	assert.False(t, nilCfg.IsConfigured())
}
