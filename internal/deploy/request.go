package deploy

import (
	"github.com/mark3labs/storelaunch/internal/form"
)

// Request is the JSON body of the provisioning call.
type Request struct {
	Package            form.PackageID                     `json:"package"`
	StoreName          string                             `json:"storeName"`
	OwnerName          string                             `json:"ownerName"`
	OwnerEmail         string                             `json:"ownerEmail"`
	OwnerPhone         string                             `json:"ownerPhone"`
	Subdomain          string                             `json:"subdomain"`
	Services           form.Services                      `json:"services"`
	ServiceCredentials map[form.Service]map[string]string `json:"serviceCredentials"`
	AdminCredentials   AdminPayload                       `json:"adminCredentials"`
}

// AdminPayload is the admin account sent to the provisioning service.
// ConfirmPassword always mirrors Password.
type AdminPayload struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// BuildRequest projects the form onto the wire payload. Credentials are
// included only for enabled services; disabled services are omitted rather
// than sent empty.
func BuildRequest(st *form.State) Request {
	creds := make(map[form.Service]map[string]string)
	for _, info := range form.ServiceCatalog() {
		if !st.Services.Enabled(info.Service) {
			continue
		}
		pair := st.ServiceCredentials.Get(info.Service)
		creds[info.Service] = map[string]string{
			info.IDKey:     pair.ID,
			info.SecretKey: pair.Secret,
		}
	}

	return Request{
		Package:            st.Package,
		StoreName:          st.StoreName,
		OwnerName:          st.OwnerName,
		OwnerEmail:         st.OwnerEmail,
		OwnerPhone:         st.OwnerPhone,
		Subdomain:          st.Subdomain,
		Services:           st.Services,
		ServiceCredentials: creds,
		AdminCredentials: AdminPayload{
			Email:           st.AdminCredentials.AdminEmail,
			Password:        st.AdminCredentials.AdminPassword,
			ConfirmPassword: st.AdminCredentials.AdminPassword,
		},
	}
}
