package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPackagesCatalog(t *testing.T) {
	pkgs := Packages()
	require.Len(t, pkgs, 3)
	require.Equal(t, []PackageID{PackageBasic, PackageProfessional, PackageEnterprise},
		[]PackageID{pkgs[0].ID, pkgs[1].ID, pkgs[2].ID})

	p, ok := LookupPackage(PackageProfessional)
	require.True(t, ok)
	require.Equal(t, "Professional Store", p.Name)
	require.Equal(t, "$79/month", p.Price)
	require.Contains(t, p.Features, "Custom domain")

	_, ok = LookupPackage("platinum")
	require.False(t, ok)

	// Callers cannot mutate the catalog through returned slices.
	pkgs[0].Features[0] = "changed"
	again, _ := LookupPackage(PackageBasic)
	require.Equal(t, "Up to 100 products", again.Features[0])
}

func TestServicesCatalog(t *testing.T) {
	infos := ServiceCatalog()
	require.Len(t, infos, 4)

	keys := map[Service][2]string{}
	for _, info := range infos {
		keys[info.Service] = [2]string{info.IDKey, info.SecretKey}
	}
	require.Equal(t, [2]string{"clientId", "clientSecret"}, keys[ServiceGoogle])
	require.Equal(t, [2]string{"appId", "appSecret"}, keys[ServiceFacebook])
	require.Equal(t, [2]string{"publishableKey", "secretKey"}, keys[ServiceStripe])
	require.Equal(t, [2]string{"clientId", "clientSecret"}, keys[ServicePayPal])

	require.True(t, ServiceStripe.Valid())
	require.False(t, Service("twitter").Valid())
}

func TestNewIsEmpty(t *testing.T) {
	s := New()
	require.True(t, s.IsZero())
	require.False(t, s.Services.Any())
	require.Empty(t, s.Services.List())
}

func TestApply_WritesThrough(t *testing.T) {
	s := New()
	s.Apply(SetPackage{ID: PackageEnterprise})
	s.Apply(SetStoreDetail{Field: StoreName, Value: "Acme"})
	s.Apply(SetStoreDetail{Field: OwnerName, Value: "Ada"})
	s.Apply(SetStoreDetail{Field: OwnerEmail, Value: "not-an-email"})
	s.Apply(SetStoreDetail{Field: OwnerPhone, Value: "x"})
	s.Apply(SetService{Service: ServiceStripe, Enabled: true})
	s.Apply(SetCredential{Service: ServiceStripe, Part: CredentialID, Value: "pk_test"})
	s.Apply(SetCredential{Service: ServiceStripe, Part: CredentialSecret, Value: "sk_test"})
	s.Apply(SetAdmin{Field: AdminEmail, Value: "admin@acme.test"})
	s.Apply(SetAdmin{Field: AdminPassword, Value: "a"})
	s.Apply(SetAdmin{Field: ConfirmPassword, Value: "b"})
	s.Apply(SetPayment{Field: Expiry, Value: "08/29"})
	s.Apply(SetPayment{Field: CVV, Value: "009"})
	s.Apply(nil)

	require.Equal(t, PackageEnterprise, s.Package)
	require.Equal(t, "Acme", s.StoreName)
	require.Equal(t, "Ada", s.OwnerName)
	require.Equal(t, "not-an-email", s.OwnerEmail, "no format validation on write")
	require.Equal(t, "x", s.OwnerPhone)
	require.True(t, s.Services.Stripe)
	require.Equal(t, CredentialPair{ID: "pk_test", Secret: "sk_test"}, s.ServiceCredentials.Get(ServiceStripe))
	require.Equal(t, "b", s.AdminCredentials.ConfirmPassword, "mismatch is stored, not rejected")
	require.Equal(t, "08/29", s.PaymentCredentials.Expiry)
	require.Equal(t, "009", s.PaymentCredentials.CVV)
}

func TestToggleService(t *testing.T) {
	s := New()
	s.Apply(ToggleService{Service: ServiceGoogle})
	require.True(t, s.Services.Google)
	require.Equal(t, []Service{ServiceGoogle}, s.Services.List())

	s.Apply(ToggleService{Service: ServiceGoogle})
	require.False(t, s.Services.Google)

	s.Apply(ToggleService{Service: "myspace"})
	require.False(t, s.Services.Any())
}

func TestDisabledServiceCredentialsRetained(t *testing.T) {
	s := New()
	s.Apply(SetService{Service: ServicePayPal, Enabled: true})
	s.Apply(SetCredential{Service: ServicePayPal, Part: CredentialID, Value: "id"})
	s.Apply(SetService{Service: ServicePayPal, Enabled: false})

	require.Equal(t, "id", s.ServiceCredentials.Get(ServicePayPal).ID)
}

func TestSanitizeSubdomain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"mystore", "mystore"},
		{"My Store", "mystore"},
		{"shop-42", "shop-42"},
		{"shop_42.com", "shop42com"},
		{"ÜBER!!", "ber"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, SanitizeSubdomain(tt.in))

			s := New()
			s.Apply(SetSubdomain{Value: tt.in})
			require.Equal(t, tt.want, s.Subdomain)
		})
	}
}

func TestSetPayment_CardNumber(t *testing.T) {
	s := New()
	s.Apply(SetPayment{Field: CardNumber, Value: "4242 4242 4242 4242"})
	require.Equal(t, "4242424242424242", s.PaymentCredentials.CardNumber)

	// Longer than 16 digits: ignored, previous value kept.
	s.Apply(SetPayment{Field: CardNumber, Value: "42424242424242421"})
	require.Equal(t, "4242424242424242", s.PaymentCredentials.CardNumber)

	s.Apply(SetPayment{Field: CardNumber, Value: "12ab34"})
	require.Equal(t, "1234", s.PaymentCredentials.CardNumber)
}

func TestSuggestSubdomain(t *testing.T) {
	assert.Equal(t, "my-coffee-shop", SuggestSubdomain("My Coffee Shop!"))
	assert.Equal(t, "", SuggestSubdomain("   "))
	assert.Regexp(t, `^[a-z0-9-]*$`, SuggestSubdomain("Grüne Äpfel GmbH"))
}

func TestResetClearsEverything(t *testing.T) {
	s := filled()
	require.False(t, s.IsZero())

	s.Reset()
	require.True(t, s.IsZero())
	require.Equal(t, State{}, *s)
}

func TestClone_Independent(t *testing.T) {
	s := filled()
	c := s.Clone()
	c.Apply(SetSubdomain{Value: "other"})
	c.Apply(ToggleService{Service: ServiceGoogle})

	require.Equal(t, "acme", s.Subdomain)
	require.True(t, s.Services.Google)
}

func TestServiceCredentials_JSONLayout(t *testing.T) {
	s := filled()
	data, err := json.Marshal(s.ServiceCredentials)
	require.NoError(t, err)

	var flat map[string]string
	require.NoError(t, json.Unmarshal(data, &flat))
	require.Equal(t, "gid", flat["googleClientId"])
	require.Equal(t, "gsecret", flat["googleClientSecret"])
	require.Equal(t, "fid", flat["facebookAppId"])
	require.Equal(t, "ssecret", flat["stripeSecretKey"])
	require.Equal(t, "pid", flat["paypalClientId"])
	require.Len(t, flat, 8)

	var back ServiceCredentials
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, s.ServiceCredentials, back)
}

func TestState_JSONKeys(t *testing.T) {
	data, err := json.Marshal(filled())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"package", "storeName", "ownerName", "ownerEmail", "ownerPhone",
		"subdomain", "services", "serviceCredentials", "adminCredentials", "paymentCredentials"} {
		require.Contains(t, raw, key)
	}
}

func TestState_YAMLAnswers(t *testing.T) {
	doc := `
package: basic
store_name: Acme
owner_name: Ada
owner_email: ada@acme.test
owner_phone: "555"
subdomain: "Acme Shop"
services:
  google: true
service_credentials:
  google:
    id: gid
    secret: gsecret
admin_credentials:
  admin_email: admin@acme.test
  admin_password: pw
  confirm_password: pw
payment_credentials:
  card_number: "4242 4242 4242 4242"
  expiry: "08/29"
  cvv: "009"
`
	var s State
	require.NoError(t, yaml.Unmarshal([]byte(doc), &s))
	s.Normalize()

	require.Equal(t, PackageBasic, s.Package)
	require.Equal(t, "Acme", s.StoreName)
	require.Equal(t, "acmeshop", s.Subdomain)
	require.True(t, s.Services.Google)
	require.Equal(t, "gsecret", s.ServiceCredentials.Google.Secret)
	require.Equal(t, "4242424242424242", s.PaymentCredentials.CardNumber)
}

// filled returns a form with every field populated.
func filled() *State {
	s := New()
	s.Apply(SetPackage{ID: PackageProfessional})
	s.Apply(SetStoreDetail{Field: StoreName, Value: "Acme"})
	s.Apply(SetStoreDetail{Field: OwnerName, Value: "Ada"})
	s.Apply(SetStoreDetail{Field: OwnerEmail, Value: "ada@acme.test"})
	s.Apply(SetStoreDetail{Field: OwnerPhone, Value: "555-0100"})
	s.Apply(SetSubdomain{Value: "acme"})
	for _, pair := range []struct {
		svc    Service
		id, sc string
	}{
		{ServiceGoogle, "gid", "gsecret"},
		{ServiceFacebook, "fid", "fsecret"},
		{ServiceStripe, "sid", "ssecret"},
		{ServicePayPal, "pid", "psecret"},
	} {
		s.Apply(SetService{Service: pair.svc, Enabled: true})
		s.Apply(SetCredential{Service: pair.svc, Part: CredentialID, Value: pair.id})
		s.Apply(SetCredential{Service: pair.svc, Part: CredentialSecret, Value: pair.sc})
	}
	s.Apply(SetAdmin{Field: AdminEmail, Value: "admin@acme.test"})
	s.Apply(SetAdmin{Field: AdminPassword, Value: "hunter2"})
	s.Apply(SetAdmin{Field: ConfirmPassword, Value: "hunter2"})
	s.Apply(SetPayment{Field: CardNumber, Value: "4242424242424242"})
	s.Apply(SetPayment{Field: Expiry, Value: "08/29"})
	s.Apply(SetPayment{Field: CVV, Value: "009"})
	return s
}
