// File: internal/humanoid/types.go
package humanoid

// MouseEventType defines the type of mouse event. These strings align with
// the CDP Input domain event names.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
	MouseWheel   MouseEventType = "mouseWheel"
)

// MouseButton defines the mouse button.
type MouseButton string

const (
	ButtonNone MouseButton = "none"
	ButtonLeft MouseButton = "left"
)

// MouseEventData holds the data required to dispatch a mouse event. It is an
// automation-engine-agnostic structure consumed by the Executor interface.
type MouseEventData struct {
	Type       MouseEventType
	X          float64
	Y          float64
	Button     MouseButton
	ClickCount int
	// DeltaX and DeltaY are used for MouseWheel events.
	DeltaX float64
	DeltaY float64
}

// ElementGeometry is the bounding box of a DOM element, replacing
// driver-specific geometry types.
type ElementGeometry struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the geometric center of the box.
func (g ElementGeometry) Center() Vector2D {
	return Vector2D{X: g.X + g.Width/2.0, Y: g.Y + g.Height/2.0}
}
