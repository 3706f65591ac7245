package form

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUpdate(t *testing.T) {
	tests := []struct {
		path, value string
		want        Update
	}{
		{"package", "basic", SetPackage{ID: PackageBasic}},
		{"storeName", "Acme", SetStoreDetail{Field: StoreName, Value: "Acme"}},
		{"ownerPhone", "555", SetStoreDetail{Field: OwnerPhone, Value: "555"}},
		{"subdomain", "acme", SetSubdomain{Value: "acme"}},
		{"services.paypal", "true", SetService{Service: ServicePayPal, Enabled: true}},
		{"services.google", "0", SetService{Service: ServiceGoogle, Enabled: false}},
		{"serviceCredentials.stripe.publishableKey", "pk", SetCredential{Service: ServiceStripe, Part: CredentialID, Value: "pk"}},
		{"serviceCredentials.facebook.appSecret", "fs", SetCredential{Service: ServiceFacebook, Part: CredentialSecret, Value: "fs"}},
		{"serviceCredentials.google.secret", "gs", SetCredential{Service: ServiceGoogle, Part: CredentialSecret, Value: "gs"}},
		{"adminCredentials.confirmPassword", "pw", SetAdmin{Field: ConfirmPassword, Value: "pw"}},
		{"paymentCredentials.expiry", "08/29", SetPayment{Field: Expiry, Value: "08/29"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseUpdate(tt.path, tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseUpdate_Errors(t *testing.T) {
	for _, path := range []string{
		"",
		"nickname",
		"package.id",
		"services.myspace",
		"serviceCredentials.stripe.clientId",
		"serviceCredentials.stripe",
		"adminCredentials.username",
		"paymentCredentials.pin",
	} {
		_, err := ParseUpdate(path, "x")
		require.Error(t, err, path)
	}

	_, err := ParseUpdate("services.stripe", "maybe")
	require.ErrorContains(t, err, "services.stripe")
}
