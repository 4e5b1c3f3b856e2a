// File: internal/browser/driver.go
package browser

import (
	"context"
	"time"
)

// Driver is the small capability surface the navigator and its handlers
// depend on. It keeps the state machine portable across automation engines
// and trivially mockable in tests.
type Driver interface {
	// Navigate loads the given URL and waits for the navigation to commit.
	Navigate(ctx context.Context, url string) error

	// Back navigates one entry back in session history.
	Back(ctx context.Context) error

	// CurrentURL reports the page's current location.
	CurrentURL(ctx context.Context) (string, error)

	// Visible reports whether at least one element matching the selector is
	// currently rendered with a non-empty box. It never errors: a page we do
	// not control may simply not have the element.
	Visible(ctx context.Context, selector string) bool

	// Count returns the number of elements matching the selector.
	Count(ctx context.Context, selector string) int

	// Texts returns the visible text of up to limit elements matching the
	// selector, in document order.
	Texts(ctx context.Context, selector string, limit int) []string

	// WaitVisible blocks until the selector is visible or the timeout
	// elapses, reporting which.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) bool

	// ScrollIntoView centers the nth (0-based) element matching the selector
	// in the viewport. Missing elements are absorbed.
	ScrollIntoView(ctx context.Context, selector string, n int) error

	// Click moves to and clicks the first matching element with humanized
	// motion. Missing elements are absorbed, not errors.
	Click(ctx context.Context, selector string) error

	// ClickNth is Click against the nth (0-based) element matching selector.
	ClickNth(ctx context.Context, selector string, n int) error

	// ClickCenter clicks the center of the viewport.
	ClickCenter(ctx context.Context) error

	// RageClick rapidly clicks the element count times.
	RageClick(ctx context.Context, selector string, count int) error

	// TypeInto focuses the field and types the text with humanized cadence.
	TypeInto(ctx context.Context, selector, text string) error

	// PressEnter submits whatever currently holds focus.
	PressEnter(ctx context.Context) error

	// ScrollBy scrolls the page vertically by roughly dy pixels.
	ScrollBy(ctx context.Context, dy float64) error

	// Jitter drifts the pointer slightly to signal presence.
	Jitter(ctx context.Context) error

	// Eval runs a JavaScript expression and unmarshals the result into out.
	Eval(ctx context.Context, expr string, out any) error
}
