// Package export writes the downloadable store configuration document.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/form"
)

// ErrNoResult is returned when there is no completed deployment to export.
var ErrNoResult = errors.New("no deployment result to export")

// Document is the exported configuration.
type Document struct {
	FormData         *form.State    `json:"formData"`
	DeploymentResult *deploy.Result `json:"deploymentResult"`
}

// FileName returns the export file name for subdomain.
func FileName(subdomain string) string {
	return fmt.Sprintf("store-config-%s.json", subdomain)
}

// Marshal renders the document as indented JSON.
func Marshal(st *form.State, result *deploy.Result) ([]byte, error) {
	if result == nil {
		return nil, ErrNoResult
	}
	data, err := json.MarshalIndent(Document{FormData: st, DeploymentResult: result}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// Write stores the document for st in dir and returns its path.
func Write(dir string, st *form.State, result *deploy.Result) (string, error) {
	data, err := Marshal(st, result)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(st.Subdomain))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
