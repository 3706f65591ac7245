package wizard

import (
	"fmt"

	"github.com/mark3labs/storelaunch/internal/form"
)

// CanAdvance reports whether st satisfies the gate of step. Steps without a
// gate always pass.
func CanAdvance(step Step, st *form.State) bool {
	switch step {
	case StepPackage:
		_, ok := form.LookupPackage(st.Package)
		return ok
	case StepStoreDetails:
		return st.StoreName != "" && st.OwnerName != "" && st.OwnerEmail != "" && st.OwnerPhone != ""
	case StepSubdomain:
		return st.Subdomain != ""
	case StepServices:
		return st.Services.Any()
	case StepCredentials:
		for _, svc := range st.Services.List() {
			if !st.ServiceCredentials.Get(svc).Complete() {
				return false
			}
		}
		return true
	case StepAdmin:
		a := st.AdminCredentials
		return a.AdminEmail != "" && a.AdminPassword != "" && a.ConfirmPassword != "" &&
			a.AdminPassword == a.ConfirmPassword
	case StepPayment:
		p := st.PaymentCredentials
		return p.CardNumber == SentinelCard && p.Expiry == SentinelExpiry && p.CVV == SentinelCVV
	default:
		return true
	}
}

// Issue is an advisory hint explaining why a step is blocked. Field is the
// form path the hint belongs to, or empty for step-wide hints.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// Issues lists the hints for step. It is empty exactly when nothing needs
// fixing, except for the trial hint which only appears once a card number
// has been typed.
func Issues(step Step, st *form.State) []Issue {
	var out []Issue
	required := func(field, value string) {
		if value == "" {
			out = append(out, Issue{Field: field, Message: "required"})
		}
	}

	switch step {
	case StepPackage:
		if st.Package == "" {
			out = append(out, Issue{Field: "package", Message: "choose a package"})
		} else if _, ok := form.LookupPackage(st.Package); !ok {
			out = append(out, Issue{Field: "package", Message: fmt.Sprintf("unknown package %q", st.Package)})
		}
	case StepStoreDetails:
		required("storeName", st.StoreName)
		required("ownerName", st.OwnerName)
		required("ownerEmail", st.OwnerEmail)
		required("ownerPhone", st.OwnerPhone)
	case StepSubdomain:
		required("subdomain", st.Subdomain)
	case StepServices:
		if !st.Services.Any() {
			out = append(out, Issue{Field: "services", Message: "enable at least one service"})
		}
	case StepCredentials:
		for _, svc := range st.Services.List() {
			info, _ := form.LookupService(svc)
			pair := st.ServiceCredentials.Get(svc)
			required(string(svc)+"."+info.IDKey, pair.ID)
			required(string(svc)+"."+info.SecretKey, pair.Secret)
		}
	case StepAdmin:
		a := st.AdminCredentials
		required("adminEmail", a.AdminEmail)
		required("adminPassword", a.AdminPassword)
		required("confirmPassword", a.ConfirmPassword)
		if a.AdminPassword != "" && a.ConfirmPassword != "" && a.AdminPassword != a.ConfirmPassword {
			out = append(out, Issue{Field: "confirmPassword", Message: "passwords do not match"})
		}
	case StepPayment:
		if st.PaymentCredentials.CardNumber != "" && !CanAdvance(StepPayment, st) {
			out = append(out, Issue{Message: TrialCardHint})
		}
	}
	return out
}
