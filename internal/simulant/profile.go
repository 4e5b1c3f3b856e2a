// File: internal/simulant/profile.go
package simulant

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Device describes the simulated hardware and browser fingerprint for one
// session. The viewport and user agent are applied to the browser context
// before the first navigation.
type Device struct {
	Type           string // desktop, mobile, tablet
	BrowserFamily  string
	OS             string
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// Acquisition is the simulated marketing source the session "arrived" from.
// It is encoded as UTM parameters on the landing URL so the analytics
// pipeline attributes the session accordingly.
type Acquisition struct {
	Source string
	Medium string
}

// PlanIntent is the subscription plan the simulated user gravitates toward.
type PlanIntent struct {
	PlanID string
}

// Credentials is a generated email/password pair for signup and login forms.
type Credentials struct {
	Email    string
	Password string
}

// Profile is the randomized identity driving one simulated session. It is
// constructed once at session start, immutable afterwards, and discarded when
// the session ends.
type Profile struct {
	Device      Device
	Acquisition Acquisition
	Plan        PlanIntent
	Credentials Credentials
	// DisplayName is what the HogFlix profile picker shows for this user.
	DisplayName string
}

// The fixed weighted tables below are demo-tuning constants. The weights are
// relative and intentionally do not sum to 100.

var deviceTable = []WeightedOption[Device]{
	{Weight: 45, Value: Device{
		Type: "desktop", BrowserFamily: "Chrome", OS: "macOS",
		UserAgent:     "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		ViewportWidth: 1440, ViewportHeight: 900,
	}},
	{Weight: 25, Value: Device{
		Type: "desktop", BrowserFamily: "Chrome", OS: "Windows",
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		ViewportWidth: 1920, ViewportHeight: 1080,
	}},
	{Weight: 20, Value: Device{
		Type: "mobile", BrowserFamily: "Safari", OS: "iOS",
		UserAgent:     "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		ViewportWidth: 390, ViewportHeight: 844,
	}},
	{Weight: 10, Value: Device{
		Type: "tablet", BrowserFamily: "Safari", OS: "iPadOS",
		UserAgent:     "Mozilla/5.0 (iPad; CPU OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		ViewportWidth: 820, ViewportHeight: 1180,
	}},
}

var acquisitionTable = []WeightedOption[Acquisition]{
	{Weight: 35, Value: Acquisition{Source: "google", Medium: "organic"}},
	{Weight: 20, Value: Acquisition{Source: "direct", Medium: "none"}},
	{Weight: 15, Value: Acquisition{Source: "newsletter", Medium: "email"}},
	{Weight: 15, Value: Acquisition{Source: "twitter", Medium: "social"}},
	{Weight: 10, Value: Acquisition{Source: "producthunt", Medium: "referral"}},
	{Weight: 5, Value: Acquisition{Source: "bing", Medium: "cpc"}},
}

var planTable = []WeightedOption[PlanIntent]{
	{Weight: 60, Value: PlanIntent{PlanID: "basic"}},
	{Weight: 30, Value: PlanIntent{PlanID: "standard"}},
	{Weight: 10, Value: PlanIntent{PlanID: "premium"}},
}

var firstNames = []string{
	"Max", "Sam", "Ari", "Jo", "Quinn", "Riley", "Casey", "Morgan",
	"Dana", "Alex", "Robin", "Jules", "Noor", "Kai", "Remy", "Sasha",
}

// NewProfile draws one complete session identity from the weighted tables.
func NewProfile(rng *rand.Rand) Profile {
	name := firstNames[rng.Intn(len(firstNames))]
	// A uuid fragment keeps distinct ids from colliding across runs.
	tag := strings.Split(uuid.New().String(), "-")[0]

	return Profile{
		Device:      MustPickWeighted(rng, deviceTable),
		Acquisition: MustPickWeighted(rng, acquisitionTable),
		Plan:        MustPickWeighted(rng, planTable),
		Credentials: Credentials{
			Email:    fmt.Sprintf("%s.%s@hogmail.example", strings.ToLower(name), tag),
			Password: fmt.Sprintf("Hog-%s-%02d!", tag, rng.Intn(100)),
		},
		DisplayName: name,
	}
}

// LandingURL decorates the base URL with the profile's UTM attribution so the
// analytics pipeline books the session under the drawn acquisition source.
func (p Profile) LandingURL(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("utm_source", p.Acquisition.Source)
	if p.Acquisition.Medium != "none" {
		q.Set("utm_medium", p.Acquisition.Medium)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// DistinctID returns the stable analytics identity for this profile.
func (p Profile) DistinctID() string {
	return p.Credentials.Email
}
