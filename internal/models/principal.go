package models

// Principal is the authenticated identity attached to a request after
// credential resolution. It never carries the password hash.
type Principal struct {
	User   User   `json:"user"`
	Tenant Tenant `json:"tenant"`
}

func NewPrincipal(uwt *UserWithTenant) *Principal {
	user := uwt.User
	user.PasswordHash = ""
	return &Principal{User: user, Tenant: uwt.Tenant}
}
