package domain

type Step string

const (
	StepIdle                   Step = ""
	StepAwaitingPhoto          Step = "awaiting_photo"
	StepAwaitingLocation       Step = "awaiting_location"
	StepAwaitingCustomLocation Step = "awaiting_custom_location"
)

// Session is the per-user conversation state. An absent entry in the
// store is equivalent to a zero Session at StepIdle.
type Session struct {
	CorrelationID string
	Step          Step
	// AutoIdentify makes resolving a location trigger identification
	// immediately instead of waiting for an explicit /identify.
	AutoIdentify bool
	PhotoFileID  string
	Location     *string
	// LocationSet distinguishes an explicit "skip" (Location == nil)
	// from a location that was never asked for.
	LocationSet bool
}
