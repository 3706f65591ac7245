package form

import (
	"strings"

	"github.com/gosimple/slug"
)

// Update is a typed, path-addressed write into a State. Each command targets
// exactly one field; none of them validate.
type Update interface {
	apply(*State)
}

// Apply writes u through to the form.
func (s *State) Apply(u Update) {
	if u == nil {
		return
	}
	u.apply(s)
}

// StoreField selects a field of StoreDetails.
type StoreField int

const (
	StoreName StoreField = iota
	OwnerName
	OwnerEmail
	OwnerPhone
)

// AdminField selects a field of AdminCredentials.
type AdminField int

const (
	AdminEmail AdminField = iota
	AdminPassword
	ConfirmPassword
)

// PaymentField selects a field of PaymentCredentials.
type PaymentField int

const (
	CardNumber PaymentField = iota
	Expiry
	CVV
)

// CredentialPart selects one half of a CredentialPair.
type CredentialPart int

const (
	CredentialID CredentialPart = iota
	CredentialSecret
)

// SetPackage selects an offering tier.
type SetPackage struct{ ID PackageID }

func (u SetPackage) apply(s *State) { s.Package = u.ID }

// SetStoreDetail writes one of the step 2 fields.
type SetStoreDetail struct {
	Field StoreField
	Value string
}

func (u SetStoreDetail) apply(s *State) {
	switch u.Field {
	case StoreName:
		s.StoreName = u.Value
	case OwnerName:
		s.OwnerName = u.Value
	case OwnerEmail:
		s.OwnerEmail = u.Value
	case OwnerPhone:
		s.OwnerPhone = u.Value
	}
}

// SetSubdomain writes the subdomain after stripping disallowed characters.
type SetSubdomain struct{ Value string }

func (u SetSubdomain) apply(s *State) { s.Subdomain = SanitizeSubdomain(u.Value) }

// SetService turns a service on or off.
type SetService struct {
	Service Service
	Enabled bool
}

func (u SetService) apply(s *State) {
	if p := s.Services.flag(u.Service); p != nil {
		*p = u.Enabled
	}
}

// ToggleService flips a service flag.
type ToggleService struct{ Service Service }

func (u ToggleService) apply(s *State) {
	if p := s.Services.flag(u.Service); p != nil {
		*p = !*p
	}
}

// SetCredential writes half of a service's credential pair. Pairs of
// disabled services are kept as entered.
type SetCredential struct {
	Service Service
	Part    CredentialPart
	Value   string
}

func (u SetCredential) apply(s *State) {
	p := s.ServiceCredentials.pair(u.Service)
	if p == nil {
		return
	}
	if u.Part == CredentialSecret {
		p.Secret = u.Value
	} else {
		p.ID = u.Value
	}
}

// SetAdmin writes one of the step 6 fields.
type SetAdmin struct {
	Field AdminField
	Value string
}

func (u SetAdmin) apply(s *State) {
	switch u.Field {
	case AdminEmail:
		s.AdminCredentials.AdminEmail = u.Value
	case AdminPassword:
		s.AdminCredentials.AdminPassword = u.Value
	case ConfirmPassword:
		s.AdminCredentials.ConfirmPassword = u.Value
	}
}

// SetPayment writes one of the card triple fields. Card numbers have
// whitespace and non-digits removed; an edit longer than 16 digits is
// dropped and the previous value kept.
type SetPayment struct {
	Field PaymentField
	Value string
}

func (u SetPayment) apply(s *State) {
	switch u.Field {
	case CardNumber:
		if card, ok := sanitizeCardNumber(u.Value); ok {
			s.PaymentCredentials.CardNumber = card
		}
	case Expiry:
		s.PaymentCredentials.Expiry = u.Value
	case CVV:
		s.PaymentCredentials.CVV = u.Value
	}
}

// MaxCardDigits is the longest card number the form accepts.
const MaxCardDigits = 16

// SanitizeSubdomain lower-cases v and strips everything outside [a-z0-9-].
func SanitizeSubdomain(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(v) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sanitizeCardNumber(v string) (string, bool) {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > MaxCardDigits {
		return "", false
	}
	return out, true
}

// SuggestSubdomain derives a subdomain from the store name, e.g.
// "My Coffee Shop!" -> "my-coffee-shop".
func SuggestSubdomain(storeName string) string {
	return strings.Trim(SanitizeSubdomain(slug.Make(storeName)), "-")
}
