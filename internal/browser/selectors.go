// File: internal/browser/selectors.go
package browser

import "context"

// Role names a semantic element on the target application. Handlers talk in
// roles; the concrete CSS lives in one table so markup changes on the demo
// app require editing exactly one place.
type Role string

const (
	RoleEmailInput    Role = "email-input"
	RolePasswordInput Role = "password-input"
	RoleSubmitButton  Role = "submit-button"
	RoleProfileAvatar Role = "profile-avatar"
	RoleContentCard   Role = "content-card"
	RolePlayButton    Role = "play-button"
	RoleVideoElement  Role = "video-element"
	RoleSigninLink    Role = "signin-link"
	RoleNavLink       Role = "nav-link"
	RolePageHeading   Role = "page-heading"
)

// selectorTable maps each role to an ordered list of CSS strategies. Earlier
// entries are more specific; later entries are progressively looser nets for
// when the demo app's markup drifts.
var selectorTable = map[Role][]string{
	RoleEmailInput: {
		`input[type="email"]`,
		`input[name="email"]`,
		`input[autocomplete="email"]`,
		`input[placeholder*="mail" i]`,
	},
	RolePasswordInput: {
		`input[type="password"]`,
		`input[name="password"]`,
	},
	RoleSubmitButton: {
		`button[type="submit"]`,
		`input[type="submit"]`,
		`form button`,
	},
	RoleProfileAvatar: {
		`[data-testid="profile-avatar"]`,
		`.profile-avatar`,
		`.profile-card`,
		`[class*="avatar"]`,
	},
	RoleContentCard: {
		`[data-testid="content-card"]`,
		`.content-card`,
		`.movie-card`,
		`a[href*="/watch/"]`,
	},
	RolePlayButton: {
		`[data-testid="play-button"]`,
		`button[aria-label*="Play" i]`,
		`.play-button`,
	},
	RoleVideoElement: {
		`video`,
	},
	RoleSigninLink: {
		`a[href*="/login"]`,
		`[data-testid="signin-link"]`,
		`a[href*="signin"]`,
	},
	RoleNavLink: {
		`nav a[href]`,
		`header a[href]`,
	},
	RolePageHeading: {
		`h1`,
		`h2`,
	},
}

// Strategies returns the ordered selector list for a role. Unknown roles get
// an empty list, which every caller treats as "element absent".
func Strategies(role Role) []string {
	return selectorTable[role]
}

// Resolve walks the role's strategies in order and returns the first selector
// with at least one visible match. ok is false when no strategy lands, which
// is an expected condition on pages that simply lack the element.
func Resolve(ctx context.Context, drv Driver, role Role) (string, bool) {
	for _, sel := range selectorTable[role] {
		if ctx.Err() != nil {
			return "", false
		}
		if drv.Visible(ctx, sel) {
			return sel, true
		}
	}
	return "", false
}

// ResolveAny reports the first role from the list that resolves, with its
// selector. Used where a handler accepts several affordances.
func ResolveAny(ctx context.Context, drv Driver, roles ...Role) (Role, string, bool) {
	for _, role := range roles {
		if sel, ok := Resolve(ctx, drv, role); ok {
			return role, sel, true
		}
	}
	return "", "", false
}
