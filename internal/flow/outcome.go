// Package flow defines the discriminated outcome an operation hands back to
// the presentation layer: a destination step and an optional message. The
// core never renders anything; any presentation layer decides navigation.
package flow

// Step names the next destination after a successful operation. Values mirror
// the consumer app's pages but carry no rendering semantics here.
type Step string

const (
	StepNone      Step = ""
	StepVerifyOTP Step = "verify-otp"
	StepProtected Step = "protected"
	StepSignIn    Step = "sign-in"
)

// Outcome is the terminal result of a successful operation: where to go next
// and, optionally, what to tell the user. Failures travel as errors, not
// outcomes.
type Outcome struct {
	Next    Step
	Message string
}

// Continue directs the caller to the next step with no message.
func Continue(next Step) Outcome {
	return Outcome{Next: next}
}

// Success returns to the caller with a success message.
func Success(next Step, message string) Outcome {
	return Outcome{Next: next, Message: message}
}
