package services

import (
	"strings"

	"github.com/citydex/outreach/internal/models"
)

const defaultOwnerName = "Business Owner"

// Built-in fallback used when a campaign has no usable template bound.
const (
	fallbackSubject = "Claim your {{business_name}} listing"
	fallbackBody    = "<p>Hi {{owner_name}},</p>" +
		"<p>{{business_name}} is listed on Citydex. Claim your free listing to " +
		"manage your business details and connect with customers in {{city}}.</p>" +
		"<p><a href=\"{{claim_url}}\">Claim your listing</a></p>"
)

// RenderInvitation merges a template with a lead's attributes and the
// generated claim URL. Unresolved placeholders are left verbatim. Pure
// function; no I/O.
func RenderInvitation(tmpl *models.InviteTemplate, lead *models.Lead, claimURL string) (subject, body string) {
	subject = fallbackSubject
	body = fallbackBody
	if tmpl != nil {
		subject = tmpl.Subject
		body = tmpl.Body
	}

	ownerName := strings.TrimSpace(lead.OwnerName)
	if ownerName == "" {
		ownerName = defaultOwnerName
	}

	replacer := strings.NewReplacer(
		"{{business_name}}", lead.BusinessName,
		"{{owner_name}}", ownerName,
		"{{claim_url}}", claimURL,
		"{{city}}", lead.City,
		"{{category}}", lead.Category,
	)

	return replacer.Replace(subject), replacer.Replace(body)
}
