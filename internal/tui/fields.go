package tui

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mark3labs/storelaunch/internal/form"
	"github.com/mark3labs/storelaunch/internal/tui/theme"
	"github.com/mark3labs/storelaunch/internal/wizard"
)

// field binds one text input to one form value.
type field struct {
	label  string
	input  textinput.Model
	value  func(*form.State) string
	update func(string) form.Update
}

func newInput(placeholder string, secret bool) textinput.Model {
	t := theme.Current()
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	in.SetWidth(40)
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func textField(label, placeholder string, secret bool, value func(*form.State) string, update func(string) form.Update) *field {
	return &field{
		label:  label,
		input:  newInput(placeholder, secret),
		value:  value,
		update: update,
	}
}

func storeField(label, placeholder string, f form.StoreField, get func(*form.State) string) *field {
	return textField(label, placeholder, false, get, func(v string) form.Update {
		return form.SetStoreDetail{Field: f, Value: v}
	})
}

func adminField(label string, secret bool, f form.AdminField, get func(*form.State) string) *field {
	return textField(label, "", secret, get, func(v string) form.Update {
		return form.SetAdmin{Field: f, Value: v}
	})
}

func paymentField(label, placeholder string, secret bool, f form.PaymentField, get func(*form.State) string) *field {
	return textField(label, placeholder, secret, get, func(v string) form.Update {
		return form.SetPayment{Field: f, Value: v}
	})
}

func credentialField(info form.ServiceInfo, part form.CredentialPart) *field {
	label, secret := info.Title+" "+info.IDLabel, false
	if part == form.CredentialSecret {
		label, secret = info.Title+" "+info.SecretLabel, true
	}
	return textField(label, "", secret,
		func(st *form.State) string {
			pair := st.ServiceCredentials.Get(info.Service)
			if part == form.CredentialSecret {
				return pair.Secret
			}
			return pair.ID
		},
		func(v string) form.Update {
			return form.SetCredential{Service: info.Service, Part: part, Value: v}
		})
}

// fieldsFor returns the text inputs of step, filled from st. Steps that are
// lists or status screens have none.
func fieldsFor(step wizard.Step, st *form.State) []*field {
	var fields []*field
	switch step {
	case wizard.StepStoreDetails:
		fields = []*field{
			storeField("Store name", "My Coffee Shop", form.StoreName, func(s *form.State) string { return s.StoreName }),
			storeField("Owner name", "", form.OwnerName, func(s *form.State) string { return s.OwnerName }),
			storeField("Owner email", "you@example.com", form.OwnerEmail, func(s *form.State) string { return s.OwnerEmail }),
			storeField("Owner phone", "", form.OwnerPhone, func(s *form.State) string { return s.OwnerPhone }),
		}
	case wizard.StepSubdomain:
		fields = []*field{
			textField("Subdomain", "my-store", false,
				func(s *form.State) string { return s.Subdomain },
				func(v string) form.Update { return form.SetSubdomain{Value: v} }),
		}
	case wizard.StepCredentials:
		for _, svc := range st.Services.List() {
			info, _ := form.LookupService(svc)
			fields = append(fields, credentialField(info, form.CredentialID), credentialField(info, form.CredentialSecret))
		}
	case wizard.StepAdmin:
		fields = []*field{
			adminField("Admin email", false, form.AdminEmail, func(s *form.State) string { return s.AdminCredentials.AdminEmail }),
			adminField("Password", true, form.AdminPassword, func(s *form.State) string { return s.AdminCredentials.AdminPassword }),
			adminField("Confirm password", true, form.ConfirmPassword, func(s *form.State) string { return s.AdminCredentials.ConfirmPassword }),
		}
	case wizard.StepPayment:
		fields = []*field{
			paymentField("Card number", "4242 4242 4242 4242", false, form.CardNumber, func(s *form.State) string { return s.PaymentCredentials.CardNumber }),
			paymentField("Expiry", "MM/YY", false, form.Expiry, func(s *form.State) string { return s.PaymentCredentials.Expiry }),
			paymentField("CVV", "123", true, form.CVV, func(s *form.State) string { return s.PaymentCredentials.CVV }),
		}
	}

	for _, f := range fields {
		f.input.SetValue(f.value(st))
	}
	return fields
}
