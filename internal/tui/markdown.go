package tui

import (
	"fmt"
	"strings"

	"charm.land/glamour/v2"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/form"
)

// renderMarkdown renders markdown content using glamour.
// Falls back to the raw markdown if rendering fails.
func renderMarkdown(content string, width int) string {
	// Cap width to 120 for readability
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	// Remove trailing newline that glamour adds
	return strings.TrimSuffix(rendered, "\n")
}

// summaryMarkdown describes the store that is being deployed.
func summaryMarkdown(st *form.State, domain string) string {
	var b strings.Builder
	b.WriteString("## Store summary\n\n")

	if pkg, ok := form.LookupPackage(st.Package); ok {
		fmt.Fprintf(&b, "- **Package:** %s (%s)\n", pkg.Name, pkg.Price)
	}
	fmt.Fprintf(&b, "- **Store:** %s\n", st.StoreName)
	fmt.Fprintf(&b, "- **Owner:** %s, %s, %s\n", st.OwnerName, st.OwnerEmail, st.OwnerPhone)
	fmt.Fprintf(&b, "- **Address:** %s\n", deploy.StoreURLs(st.Subdomain, domain).Storefront)

	var names []string
	for _, svc := range st.Services.List() {
		info, _ := form.LookupService(svc)
		names = append(names, info.Title)
	}
	if len(names) == 0 {
		names = []string{"none"}
	}
	fmt.Fprintf(&b, "- **Services:** %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "- **Admin:** %s\n", st.AdminCredentials.AdminEmail)
	return b.String()
}
