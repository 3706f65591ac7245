package form

// PackageID identifies an offering tier.
type PackageID string

const (
	PackageBasic        PackageID = "basic"
	PackageProfessional PackageID = "professional"
	PackageEnterprise   PackageID = "enterprise"
)

// Package is one offering tier shown on the first step.
type Package struct {
	ID       PackageID `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Price    string    `json:"price" yaml:"price"`
	Features []string  `json:"features" yaml:"features"`
}

var packages = []Package{
	{
		ID:       PackageBasic,
		Name:     "Basic Store",
		Price:    "$29/month",
		Features: []string{"Up to 100 products", "Basic analytics", "Email support", "SSL certificate"},
	},
	{
		ID:       PackageProfessional,
		Name:     "Professional Store",
		Price:    "$79/month",
		Features: []string{"Up to 1000 products", "Advanced analytics", "Priority support", "Custom domain", "Marketing tools"},
	},
	{
		ID:       PackageEnterprise,
		Name:     "Enterprise Store",
		Price:    "$199/month",
		Features: []string{"Unlimited products", "Custom integrations", "24/7 phone support", "Multi-store management", "Advanced reporting"},
	},
}

// Packages returns a copy of the package catalog in display order.
func Packages() []Package {
	out := make([]Package, len(packages))
	for i, p := range packages {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}

// LookupPackage returns the catalog entry for id.
func LookupPackage(id PackageID) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			p.Features = append([]string(nil), p.Features...)
			return p, true
		}
	}
	return Package{}, false
}

// Service is an optional third-party integration.
type Service string

const (
	ServiceGoogle   Service = "google"
	ServiceFacebook Service = "facebook"
	ServiceStripe   Service = "stripe"
	ServicePayPal   Service = "paypal"
)

// ServiceInfo describes how a service's credential pair is labelled and sent.
type ServiceInfo struct {
	Service     Service `json:"service"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	// Wire keys for the pair inside serviceCredentials.<service>.
	IDKey     string `json:"idKey"`
	SecretKey string `json:"secretKey"`
	// Human labels for the two inputs.
	IDLabel     string `json:"idLabel"`
	SecretLabel string `json:"secretLabel"`
}

var services = []ServiceInfo{
	{ServiceGoogle, "Google", "Google sign-in", "clientId", "clientSecret", "Client ID", "Client Secret"},
	{ServiceFacebook, "Facebook", "Facebook login", "appId", "appSecret", "App ID", "App Secret"},
	{ServiceStripe, "Stripe", "Card payments", "publishableKey", "secretKey", "Publishable Key", "Secret Key"},
	{ServicePayPal, "PayPal", "PayPal checkout", "clientId", "clientSecret", "Client ID", "Client Secret"},
}

// ServiceCatalog returns the service catalog in display order.
func ServiceCatalog() []ServiceInfo {
	return append([]ServiceInfo(nil), services...)
}

// LookupService returns the catalog entry for s.
func LookupService(s Service) (ServiceInfo, bool) {
	for _, info := range services {
		if info.Service == s {
			return info, true
		}
	}
	return ServiceInfo{}, false
}

// Valid reports whether s is in the catalog.
func (s Service) Valid() bool {
	_, ok := LookupService(s)
	return ok
}
