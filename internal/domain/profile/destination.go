package profile

import "strings"

// Destination is the dashboard a signed-in user lands on.
type Destination string

const (
	DestinationAdmin   Destination = "admin"
	DestinationPartner Destination = "partner"
	DestinationClient  Destination = "client"
)

// DashboardPath is where the client app redirects after sign-in.
func (d Destination) DashboardPath() string {
	switch d {
	case DestinationAdmin:
		return "/dashboard/admin"
	case DestinationPartner:
		return "/dashboard/partner"
	default:
		return "/"
	}
}

// ResolveDestination maps a user to a dashboard. An email on the admin list
// wins over the stored role; a missing profile falls back to client.
func ResolveDestination(email string, p *Profile, adminEmails []string) Destination {
	normalized := strings.ToLower(strings.TrimSpace(email))
	for _, admin := range adminEmails {
		if normalized != "" && strings.ToLower(strings.TrimSpace(admin)) == normalized {
			return DestinationAdmin
		}
	}
	if p == nil {
		return DestinationClient
	}
	switch {
	case p.Role == RoleAdmin:
		return DestinationAdmin
	case p.Role.IsPartner():
		return DestinationPartner
	default:
		return DestinationClient
	}
}
