package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName  = "storelaunch_events"
	subjectRoot = "storelaunch"

	// Event types
	EventTypeDeployment = "deployment"
	EventTypeWizard     = "wizard"

	// anonymousStore stands in for an empty subdomain, which is not a valid
	// subject token.
	anonymousStore = "_"
)

func storeToken(subdomain string) string {
	if subdomain == "" {
		return anonymousStore
	}
	return subdomain
}

// SubjectForStore returns the wildcard subject for all events of a store.
// Example: "storelaunch.acme.>"
func SubjectForStore(subdomain string) string {
	return fmt.Sprintf("%s.%s.>", subjectRoot, storeToken(subdomain))
}

// SubjectForEvent returns the subject for one event type of a store.
// Example: "storelaunch.acme.deployment"
func SubjectForEvent(subdomain, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, storeToken(subdomain), eventType)
}

// SetupStream creates or updates the activity stream. It is held in memory
// and bounded, so the log lives only as long as the process.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{subjectRoot + ".>"},
		Storage:  jetstream.MemoryStorage,
		MaxAge:   24 * time.Hour,
		MaxMsgs:  100_000,
	})
}
