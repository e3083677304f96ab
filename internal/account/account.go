package account

import (
	"github.com/KurtDeGreeff/habitat/pkg/githubauth"
)

// Account is the provisioned local record for an authenticated user.
type Account struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NewFromUser maps a GitHub profile onto an account record: login becomes
// the name, and the public email is carried over when present. Pure; no
// side effects.
func NewFromUser(user *githubauth.User) Account {
	acct := Account{Name: user.Login}
	if user.Email != nil {
		acct.Email = *user.Email
	}
	return acct
}

// PreferredEmail picks the address to provision when the profile has none
// public: verified primary first, then any verified, else empty.
func PreferredEmail(emails []githubauth.Email) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}
