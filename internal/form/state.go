// Package form holds the data collected by the onboarding wizard.
//
// A State is a single mutable record for one wizard session. It is written
// only through Update commands (see update.go) and validated elsewhere; it
// never rejects a write.
package form

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StoreDetails is collected on step 2.
type StoreDetails struct {
	StoreName  string `json:"storeName" yaml:"store_name"`
	OwnerName  string `json:"ownerName" yaml:"owner_name"`
	OwnerEmail string `json:"ownerEmail" yaml:"owner_email"`
	OwnerPhone string `json:"ownerPhone" yaml:"owner_phone"`
}

// Services holds one flag per catalog service. No service is on by default.
type Services struct {
	Google   bool `json:"google" yaml:"google"`
	Facebook bool `json:"facebook" yaml:"facebook"`
	Stripe   bool `json:"stripe" yaml:"stripe"`
	PayPal   bool `json:"paypal" yaml:"paypal"`
}

// Enabled reports the flag for s. Unknown services are never enabled.
func (s Services) Enabled(svc Service) bool {
	if p := s.flag(svc); p != nil {
		return *p
	}
	return false
}

// Any reports whether at least one service is enabled.
func (s Services) Any() bool {
	return s.Google || s.Facebook || s.Stripe || s.PayPal
}

// List returns the enabled services in catalog order.
func (s Services) List() []Service {
	var out []Service
	for _, info := range services {
		if s.Enabled(info.Service) {
			out = append(out, info.Service)
		}
	}
	return out
}

func (s *Services) flag(svc Service) *bool {
	switch svc {
	case ServiceGoogle:
		return &s.Google
	case ServiceFacebook:
		return &s.Facebook
	case ServiceStripe:
		return &s.Stripe
	case ServicePayPal:
		return &s.PayPal
	}
	return nil
}

// CredentialPair is the two secrets a service needs (client id/secret,
// publishable/secret key, ...).
type CredentialPair struct {
	ID     string `json:"id" yaml:"id"`
	Secret string `json:"secret" yaml:"secret"`
}

// Complete reports whether both halves are non-empty.
func (c CredentialPair) Complete() bool {
	return c.ID != "" && c.Secret != ""
}

// ServiceCredentials keeps a pair for every service, enabled or not.
type ServiceCredentials struct {
	Google   CredentialPair `yaml:"google"`
	Facebook CredentialPair `yaml:"facebook"`
	Stripe   CredentialPair `yaml:"stripe"`
	PayPal   CredentialPair `yaml:"paypal"`
}

// Get returns the pair for svc.
func (c ServiceCredentials) Get(svc Service) CredentialPair {
	if p := c.pair(svc); p != nil {
		return *p
	}
	return CredentialPair{}
}

func (c *ServiceCredentials) pair(svc Service) *CredentialPair {
	switch svc {
	case ServiceGoogle:
		return &c.Google
	case ServiceFacebook:
		return &c.Facebook
	case ServiceStripe:
		return &c.Stripe
	case ServicePayPal:
		return &c.PayPal
	}
	return nil
}

// flatKey builds the exported field name, e.g. googleClientId.
func flatKey(svc Service, wireKey string) string {
	return string(svc) + strings.ToUpper(wireKey[:1]) + wireKey[1:]
}

// MarshalJSON writes the flat, per-service key layout of the exported form
// (googleClientId, stripeSecretKey, ...).
func (c ServiceCredentials) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, 2*len(services))
	for _, info := range services {
		p := c.Get(info.Service)
		flat[flatKey(info.Service, info.IDKey)] = p.ID
		flat[flatKey(info.Service, info.SecretKey)] = p.Secret
	}
	return json.Marshal(flat)
}

// UnmarshalJSON reads the layout written by MarshalJSON.
func (c *ServiceCredentials) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decoding service credentials: %w", err)
	}
	for _, info := range services {
		p := c.pair(info.Service)
		p.ID = flat[flatKey(info.Service, info.IDKey)]
		p.Secret = flat[flatKey(info.Service, info.SecretKey)]
	}
	return nil
}

// AdminCredentials is collected on step 6.
type AdminCredentials struct {
	AdminEmail      string `json:"adminEmail" yaml:"admin_email"`
	AdminPassword   string `json:"adminPassword" yaml:"admin_password"`
	ConfirmPassword string `json:"confirmPassword" yaml:"confirm_password"`
}

// PaymentCredentials is the trial-activation card triple from step 7.
type PaymentCredentials struct {
	CardNumber string `json:"cardNumber" yaml:"card_number"`
	Expiry     string `json:"expiry" yaml:"expiry"`
	CVV        string `json:"cvv" yaml:"cvv"`
}

// State is everything the user has entered so far. The zero value is the
// initial empty state.
type State struct {
	StoreDetails `yaml:",inline"`

	Package            PackageID          `json:"package" yaml:"package"`
	Subdomain          string             `json:"subdomain" yaml:"subdomain"`
	Services           Services           `json:"services" yaml:"services"`
	ServiceCredentials ServiceCredentials `json:"serviceCredentials" yaml:"service_credentials"`
	AdminCredentials   AdminCredentials   `json:"adminCredentials" yaml:"admin_credentials"`
	PaymentCredentials PaymentCredentials `json:"paymentCredentials" yaml:"payment_credentials"`
}

// New returns an empty form.
func New() *State {
	return &State{}
}

// Reset clears every field back to its initial value.
func (s *State) Reset() {
	*s = State{}
}

// Clone returns a copy that shares nothing with s.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// IsZero reports whether s equals the initial empty state.
func (s *State) IsZero() bool {
	return *s == State{}
}

// Normalize re-applies the input filters to every normalised field. It is
// used for forms loaded from files, which bypass the update commands.
func (s *State) Normalize() {
	s.Subdomain = SanitizeSubdomain(s.Subdomain)
	if card, ok := sanitizeCardNumber(s.PaymentCredentials.CardNumber); ok {
		s.PaymentCredentials.CardNumber = card
	} else {
		s.PaymentCredentials.CardNumber = ""
	}
}
