package dialogue

import (
	"sync"
	"time"

	"vtcland/models"
	"vtcland/services/fare"
	"vtcland/services/transcript"
	"vtcland/services/verification"
)

// Session is one conversation. All state is private to the session; the
// mutex is held for the whole processing of a reply, so a second reply
// arriving meanwhile is rejected rather than queued.
type Session struct {
	ID string

	mu          sync.Mutex
	step        models.Step
	history     []models.Step
	reservation *models.Reservation
	transcript  *transcript.Transcript
	fares       *fare.Estimator
	verifier    *verification.Verifier
	lastActive  time.Time
	closed      bool
}

// Redirect tells the UI where to send the customer once the booking is done.
type Redirect struct {
	URL   string        `json:"url"`
	Delay time.Duration `json:"delay"`
}

// Turn is the outcome of one user action.
type Turn struct {
	Step     models.Step      `json:"step"`
	Messages []models.Message `json:"messages"`
	Options  []string         `json:"options,omitempty"`
	Redirect *Redirect        `json:"redirect,omitempty"`
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID           string             `json:"id"`
	Step         models.Step        `json:"step"`
	Messages     []models.Message   `json:"messages"`
	Options      []string           `json:"options,omitempty"`
	Reservation  models.Reservation `json:"reservation"`
	Verification verification.State `json:"verification"`
	GuardArmed   bool               `json:"guardArmed"`
	CanGoBack    bool               `json:"canGoBack"`
	Redirect     *Redirect          `json:"redirect,omitempty"`
	Closed       bool               `json:"closed"`
}

func (s *Session) canGoBack() bool {
	switch s.step {
	case models.StepWelcome, models.StepRestart, models.StepCompleted, models.StepEnded:
		return false
	}
	return len(s.history) > 0 && !s.closed
}
