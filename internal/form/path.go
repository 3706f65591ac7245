package form

import (
	"fmt"
	"strconv"
	"strings"
)

var storeFields = map[string]StoreField{
	"storeName":  StoreName,
	"ownerName":  OwnerName,
	"ownerEmail": OwnerEmail,
	"ownerPhone": OwnerPhone,
}

var adminFields = map[string]AdminField{
	"adminEmail":      AdminEmail,
	"adminPassword":   AdminPassword,
	"confirmPassword": ConfirmPassword,
}

var paymentFields = map[string]PaymentField{
	"cardNumber": CardNumber,
	"expiry":     Expiry,
	"cvv":        CVV,
}

// ParseUpdate maps a dotted field path, as used in the JSON form layout,
// onto an Update. Examples:
//
//	package                              -> SetPackage
//	storeName                            -> SetStoreDetail
//	services.stripe                      -> SetService (value "true"/"false")
//	serviceCredentials.stripe.secretKey  -> SetCredential
//	adminCredentials.adminPassword       -> SetAdmin
//	paymentCredentials.cvv               -> SetPayment
func ParseUpdate(path, value string) (Update, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "package":
		if len(parts) == 1 {
			return SetPackage{ID: PackageID(value)}, nil
		}
	case "subdomain":
		if len(parts) == 1 {
			return SetSubdomain{Value: value}, nil
		}
	case "services":
		if len(parts) == 2 {
			svc := Service(parts[1])
			if !svc.Valid() {
				return nil, fmt.Errorf("unknown service %q", parts[1])
			}
			on, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("services.%s: %w", svc, err)
			}
			return SetService{Service: svc, Enabled: on}, nil
		}
	case "serviceCredentials":
		if len(parts) == 3 {
			return parseCredential(parts[1], parts[2], value)
		}
	case "adminCredentials":
		if len(parts) == 2 {
			if f, ok := adminFields[parts[1]]; ok {
				return SetAdmin{Field: f, Value: value}, nil
			}
		}
	case "paymentCredentials":
		if len(parts) == 2 {
			if f, ok := paymentFields[parts[1]]; ok {
				return SetPayment{Field: f, Value: value}, nil
			}
		}
	default:
		if len(parts) == 1 {
			if f, ok := storeFields[parts[0]]; ok {
				return SetStoreDetail{Field: f, Value: value}, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown field path %q", path)
}

func parseCredential(service, key, value string) (Update, error) {
	info, ok := LookupService(Service(service))
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}
	switch key {
	case info.IDKey, "id":
		return SetCredential{Service: info.Service, Part: CredentialID, Value: value}, nil
	case info.SecretKey, "secret":
		return SetCredential{Service: info.Service, Part: CredentialSecret, Value: value}, nil
	}
	return nil, fmt.Errorf("unknown credential %q for %s (want %s or %s)", key, service, info.IDKey, info.SecretKey)
}
