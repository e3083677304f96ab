package githubauth

import "strings"

// User is the GitHub profile resource. Pointer fields are ones GitHub omits
// or nulls when the user never filled them in.
type User struct {
	Login             string  `json:"login"`
	ID                int64   `json:"id"`
	AvatarURL         string  `json:"avatar_url"`
	GravatarID        string  `json:"gravatar_id"`
	URL               string  `json:"url"`
	HTMLURL           string  `json:"html_url"`
	FollowersURL      string  `json:"followers_url"`
	FollowingURL      string  `json:"following_url"`
	GistsURL          string  `json:"gists_url"`
	StarredURL        string  `json:"starred_url"`
	SubscriptionsURL  string  `json:"subscriptions_url"`
	OrganizationsURL  string  `json:"organizations_url"`
	ReposURL          string  `json:"repos_url"`
	EventsURL         string  `json:"events_url"`
	ReceivedEventsURL string  `json:"received_events_url"`
	SiteAdmin         bool    `json:"site_admin"`
	Name              *string `json:"name"`
	Company           *string `json:"company"`
	Blog              *string `json:"blog"`
	Location          *string `json:"location"`
	Email             *string `json:"email"`
	Hireable          *bool   `json:"hireable"`
	Bio               *string `json:"bio"`
	PublicRepos       uint32  `json:"public_repos"`
	PublicGists       uint32  `json:"public_gists"`
	Followers         uint32  `json:"followers"`
	Following         uint32  `json:"following"`
	// Kept as opaque strings; nothing downstream needs them as timestamps.
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Email is one address on a GitHub account. Callers that provision accounts
// are expected to prefer verified primary entries; the client returns the
// full set and does not filter.
type Email struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// tokenGrant is the token endpoint's success shape.
type tokenGrant struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
}

// hasScope reports whether the comma-separated grant list contains scope as
// an exact entry. "user:email,read:org" grants "user:email"; "user:emailx"
// does not.
func (g tokenGrant) hasScope(scope string) bool {
	for _, granted := range strings.Split(g.Scope, ",") {
		if granted == scope {
			return true
		}
	}
	return false
}
