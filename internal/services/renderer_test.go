package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citydex/outreach/internal/models"
)

func TestRenderInvitationSubstitutesPlaceholders(t *testing.T) {
	tmpl := &models.InviteTemplate{
		Subject: "Claim {{business_name}} in {{city}}",
		Body:    "<p>Hi {{owner_name}}, your {{category}} listing: {{claim_url}}</p>",
	}
	lead := &models.Lead{
		BusinessName: "Blue Bottle Coffee",
		Category:     "cafe",
		City:         "Oakland",
		OwnerName:    "James Freeman",
	}

	subject, body := RenderInvitation(tmpl, lead, "https://citydex.example/claim?lead_id=1&token=abc")

	require.Equal(t, "Claim Blue Bottle Coffee in Oakland", subject)
	require.Equal(t, "<p>Hi James Freeman, your cafe listing: https://citydex.example/claim?lead_id=1&token=abc</p>", body)
}

func TestRenderInvitationDefaultsOwnerName(t *testing.T) {
	tmpl := &models.InviteTemplate{
		Subject: "Hello {{owner_name}}",
		Body:    "{{owner_name}}",
	}
	lead := &models.Lead{BusinessName: "Nameless Diner", OwnerName: "   "}

	subject, body := RenderInvitation(tmpl, lead, "url")

	require.Equal(t, "Hello Business Owner", subject)
	require.Equal(t, "Business Owner", body)
}

func TestRenderInvitationFallbackWhenNoTemplate(t *testing.T) {
	lead := &models.Lead{
		BusinessName: "Golden Gate Books",
		City:         "San Francisco",
	}

	subject, body := RenderInvitation(nil, lead, "https://citydex.example/claim")

	require.Equal(t, "Claim your Golden Gate Books listing", subject)
	require.Contains(t, body, "Golden Gate Books")
	require.Contains(t, body, "San Francisco")
	require.Contains(t, body, "https://citydex.example/claim")
	require.NotContains(t, body, "{{")
}

func TestRenderInvitationLeavesUnknownPlaceholders(t *testing.T) {
	tmpl := &models.InviteTemplate{
		Subject: "{{business_name}} {{unknown_field}}",
		Body:    "{{unknown_field}}",
	}
	lead := &models.Lead{BusinessName: "Corner Store"}

	subject, body := RenderInvitation(tmpl, lead, "url")

	require.Equal(t, "Corner Store {{unknown_field}}", subject)
	require.Equal(t, "{{unknown_field}}", body)
}
