// Package wizard implements the step-gated onboarding flow: the per-step
// validation rules and the controller that walks a form through them and
// hands it to the deployment tracker.
package wizard

import "fmt"

// Step is a wizard position, 1 through 9.
type Step int

const (
	StepPackage Step = iota + 1
	StepStoreDetails
	StepSubdomain
	StepServices
	StepCredentials
	StepAdmin
	StepPayment
	StepDeploying
	StepActivation
)

// LastInputStep is the final step collecting input; Next never moves past it.
const LastInputStep = StepPayment

var stepTitles = map[Step]string{
	StepPackage:      "Select Package",
	StepStoreDetails: "Store Details",
	StepSubdomain:    "Subdomain",
	StepServices:     "Services",
	StepCredentials:  "Credentials",
	StepAdmin:        "Admin Setup",
	StepPayment:      "Deployment",
	StepDeploying:    "Deploying",
	StepActivation:   "Activation",
}

// Title returns the human label of s.
func (s Step) Title() string {
	if t, ok := stepTitles[s]; ok {
		return t
	}
	return fmt.Sprintf("Step %d", int(s))
}

func (s Step) String() string { return s.Title() }

// Valid reports whether s is one of the nine steps.
func (s Step) Valid() bool { return s >= StepPackage && s <= StepActivation }

// The one card triple the trial gate accepts.
const (
	SentinelCard   = "4242424242424242"
	SentinelExpiry = "08/29"
	SentinelCVV    = "009"
)

// TrialCardHint is shown under the payment fields once a card number is typed.
const TrialCardHint = "Please use card number 4242 4242 4242 4242, expiry 08/29, CVV 009 for this trial"
