package deploy

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// URLs are the endpoints of a provisioned store.
type URLs struct {
	Storefront string `json:"storefront"`
	Admin      string `json:"admin"`
	API        string `json:"api"`
}

// Result describes a completed deployment.
type Result struct {
	ClientID string `json:"clientId"`
	URLs     URLs   `json:"urls"`
}

// StoreURLs derives the store endpoints from a subdomain and base domain.
func StoreURLs(subdomain, domain string) URLs {
	return URLs{
		Storefront: fmt.Sprintf("https://%s.%s", subdomain, domain),
		Admin:      fmt.Sprintf("https://%s.%s/admin", subdomain, domain),
		API:        fmt.Sprintf("https://api.%s.%s", subdomain, domain),
	}
}

// Synthesize builds the stand-in result used until the provisioning
// service reports its own completion payload.
func Synthesize(subdomain, domain, clientID string) Result {
	return Result{
		ClientID: clientID,
		URLs:     StoreURLs(subdomain, domain),
	}
}

const (
	clientIDPrefix   = "store_"
	clientIDLength   = 9
	clientIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewClientID returns "store_" followed by nine random [a-z0-9] characters.
func NewClientID() string {
	var b strings.Builder
	b.Grow(len(clientIDPrefix) + clientIDLength)
	b.WriteString(clientIDPrefix)
	for range clientIDLength {
		b.WriteByte(clientIDAlphabet[rand.IntN(len(clientIDAlphabet))])
	}
	return b.String()
}

// RandomIncrement returns a progress step in [0.1, 0.6).
func RandomIncrement() float64 {
	return 0.1 + rand.Float64()*0.5
}
