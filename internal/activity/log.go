package activity

import (
	"encoding/json"
	"time"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/nats"
)

// Log is the activity of one store, reduced from its events.
type Log struct {
	Subdomain string     `json:"subdomain"`
	Attempts  []*Attempt `json:"attempts"`
	Steps     []Visit    `json:"steps"`
}

// Attempt summarizes one deployment attempt.
type Attempt struct {
	Number    uint64         `json:"number"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at,omitempty"`
	Status    string         `json:"status"` // requesting, simulating, completed, failed, cancelled
	Progress  float64        `json:"progress"`
	Error     string         `json:"error,omitempty"`
	Result    *deploy.Result `json:"result,omitempty"`
}

// Visit records the wizard arriving at a step.
type Visit struct {
	Step  int       `json:"step"`
	Title string    `json:"title"`
	At    time.Time `json:"at"`
}

// Latest returns the most recent attempt, or nil.
func (l *Log) Latest() *Attempt {
	if len(l.Attempts) == 0 {
		return nil
	}
	return l.Attempts[len(l.Attempts)-1]
}

func (l *Log) attempt(n uint64) *Attempt {
	for i := len(l.Attempts) - 1; i >= 0; i-- {
		if l.Attempts[i].Number == n {
			return l.Attempts[i]
		}
	}
	return nil
}

// Apply reduces event into the log.
func (l *Log) Apply(event Event) {
	switch event.Type {
	case nats.EventTypeDeployment:
		l.applyDeployment(event)
	case nats.EventTypeWizard:
		if event.Action == "step" {
			var meta struct {
				Step int `json:"step"`
			}
			_ = json.Unmarshal(event.Meta, &meta)
			l.Steps = append(l.Steps, Visit{Step: meta.Step, Title: event.Data, At: event.Timestamp})
		}
	}
}

func (l *Log) applyDeployment(event Event) {
	var meta deploymentMeta
	_ = json.Unmarshal(event.Meta, &meta)

	if deploy.EventKind(event.Action) == deploy.EventStarted {
		l.Attempts = append(l.Attempts, &Attempt{
			Number:    meta.Attempt,
			StartedAt: event.Timestamp,
			Status:    deploy.PhaseRequesting.String(),
		})
		return
	}

	a := l.attempt(meta.Attempt)
	if a == nil {
		return
	}
	if meta.Progress > a.Progress {
		a.Progress = meta.Progress
	}

	switch deploy.EventKind(event.Action) {
	case deploy.EventAccepted:
		a.Status = deploy.PhaseSimulating.String()
	case deploy.EventFailed:
		a.Status = deploy.PhaseFailed.String()
		a.Error = event.Data
		a.EndedAt = event.Timestamp
	case deploy.EventCompleted:
		a.Status = deploy.PhaseCompleted.String()
		a.Result = meta.Result
		a.EndedAt = event.Timestamp
	case deploy.EventCancelled:
		a.Status = string(deploy.EventCancelled)
		a.EndedAt = event.Timestamp
	}
}
