package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vtcland/config"
	"vtcland/models"
	"vtcland/services/fare"
	"vtcland/services/reservation"
	"vtcland/services/verification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validCode = "123456"

var testNow = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

type fakeRouting struct {
	mu    sync.Mutex
	km    float64
	err   error
	block bool
	calls int
}

func (f *fakeRouting) Distance(ctx context.Context, _, _ string) (fare.Route, error) {
	f.mu.Lock()
	f.calls++
	km, err, block := f.km, f.err, f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return fare.Route{}, ctx.Err()
	}
	if err != nil {
		return fare.Route{}, err
	}
	return fare.Route{Text: fmt.Sprintf("%.1f km", km), Km: km}, nil
}

type fakeProvider struct {
	mu      sync.Mutex
	issued  []string
	revoked []string
	expired map[string]bool
}

func (f *fakeProvider) IssueCode(_ context.Context, phone string, _ *verification.GuardHandle) (verification.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, phone)
	return verification.Challenge{ID: fmt.Sprintf("ch-%d", len(f.issued)), Phone: phone}, nil
}

func (f *fakeProvider) CheckCode(_ context.Context, id, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired[id] {
		return verification.ErrChallengeExpired
	}
	if code != validCode {
		return verification.ErrCodeMismatch
	}
	return nil
}

func (f *fakeProvider) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, id)
	return nil
}

func (f *fakeProvider) issuedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.issued)
}

type memStore struct {
	mu        sync.Mutex
	inserted  []models.Reservation
	insertErr error
}

func (m *memStore) Insert(_ context.Context, r *models.Reservation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return "", m.insertErr
	}
	m.inserted = append(m.inserted, *r)
	return fmt.Sprintf("res-%d", len(m.inserted)), nil
}

func (m *memStore) CountAtSlot(context.Context, string, string) (int64, error) { return 0, nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string, map[string]string) error { return nil }

type harness struct {
	engine   *Engine
	routing  *fakeRouting
	provider *fakeProvider
	store    *memStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	script := config.DefaultScript()
	clock := func() time.Time { return testNow }
	h := &harness{
		routing:  &fakeRouting{km: 12.3},
		provider: &fakeProvider{expired: map[string]bool{}},
		store:    &memStore{},
	}
	sub := reservation.NewSubmitter(h.store, nopNotifier{}, script, reservation.Options{Location: time.UTC}, zap.NewNop()).
		WithClock(clock)
	h.engine = NewEngine(Deps{
		Script:    script,
		Location:  time.UTC,
		Routing:   h.routing,
		Provider:  h.provider,
		Guard:     verification.StaticGuard{},
		Submitter: sub,
		Logger:    zap.NewNop(),
		Timeout:   time.Second,
		Now:       clock,
		NewNumber: func(prefix string, _ time.Time) string { return prefix + "-600123-042" },
	})
	return h
}

// start opens an armed session.
func (h *harness) start(t *testing.T) *Session {
	t.Helper()
	s := h.engine.Start("s-1")
	require.NoError(t, h.engine.ArmGuard(context.Background(), s, "widget-token"))
	return s
}

func (h *harness) send(t *testing.T, s *Session, replies ...string) *Turn {
	t.Helper()
	var turn *Turn
	for _, r := range replies {
		var err error
		turn, err = h.engine.Reply(context.Background(), s, r)
		require.NoError(t, err, "reply %q", r)
	}
	return turn
}

var directToConfirm = []string{
	"GO", "Alice", "DirectComfort", "10 Rue de Paris", "20 Rue de Lyon",
	"2", "Non", "2025-06-01", "14:00", "Card", "+33612345678", validCode,
}

func botMessages(msgs []models.Message) []models.Message {
	var out []models.Message
	for _, m := range msgs {
		if m.Sender == models.SenderBot {
			out = append(out, m)
		}
	}
	return out
}

func TestStart_WelcomePrompt(t *testing.T) {
	h := newHarness(t)
	s := h.engine.Start("s-1")
	snap := h.engine.Snapshot(s)

	assert.Equal(t, models.StepWelcome, snap.Step)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, models.KindPrompt, snap.Messages[0].Kind)
	assert.Equal(t, []string{"GO !"}, snap.Options)
	assert.Equal(t, models.StatusDraft, snap.Reservation.Status)
	assert.False(t, snap.CanGoBack)
}

func TestReply_EndToEndDirect(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	turn := h.send(t, s, directToConfirm...)
	assert.Equal(t, models.StepConfirm, turn.Step)
	bot := botMessages(turn.Messages)
	require.Len(t, bot, 3, "verified, summary, confirm prompt")
	assert.Contains(t, bot[1].Text, "VTC-600123-042")
	assert.Contains(t, bot[1].Text, "Destination : 20 Rue de Lyon")
	assert.Contains(t, bot[1].Text, "36.90")

	turn = h.send(t, s, "Oui")
	assert.Equal(t, models.StepCompleted, turn.Step)
	require.NotNil(t, turn.Redirect)
	assert.Equal(t, 7*time.Second, turn.Redirect.Delay)
	assert.Contains(t, botMessages(turn.Messages)[0].Text, "VTC-600123-042")

	require.Equal(t, 1, h.store.count())
	saved := h.store.inserted[0]
	assert.Equal(t, models.StatusPendingReview, saved.Status)
	assert.Equal(t, "VTC-600123-042", saved.ReservationNumber)
	assert.InDelta(t, 36.9, saved.PriceValue(), 0.001)
	assert.Equal(t, "+33612345678", saved.Phone)
	assert.True(t, saved.PhoneVerified)
	assert.Equal(t, 1, h.routing.calls)

	snap := h.engine.Snapshot(s)
	assert.Equal(t, models.StatusPendingReview, snap.Reservation.Status)
	assert.Equal(t, "res-1", snap.Reservation.ID)
}

func TestReply_DoubleConfirmationSequential(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm...)

	h.send(t, s, "Oui")
	turn := h.send(t, s, "Oui")

	assert.Equal(t, 1, h.store.count())
	assert.Equal(t, models.StepCompleted, turn.Step)
	bot := botMessages(turn.Messages)
	require.Len(t, bot, 1)
	assert.Contains(t, bot[0].Text, "déjà enregistrée")
}

// blockingSubmitter holds the first submission until released.
type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (b *blockingSubmitter) Submit(_ context.Context, r *models.Reservation) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	close(b.entered)
	<-b.release
	r.Status = models.StatusPendingReview
	r.ID = "res-1"
	return r.ID, nil
}

func TestReply_DoubleConfirmationConcurrent(t *testing.T) {
	h := newHarness(t)
	sub := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	h.engine.submitter = sub
	s := h.start(t)
	h.send(t, s, directToConfirm...)

	done := make(chan error, 1)
	go func() {
		_, err := h.engine.Reply(context.Background(), s, "Oui")
		done <- err
	}()
	<-sub.entered

	_, err := h.engine.Reply(context.Background(), s, "Oui")
	assert.ErrorIs(t, err, ErrBusy)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, models.StepCompleted, h.engine.Snapshot(s).Step)
}

func visitedSteps(t *testing.T, h *harness, s *Session, replies ...string) []models.Step {
	t.Helper()
	var steps []models.Step
	for _, r := range replies {
		turn := h.send(t, s, r)
		steps = append(steps, turn.Step)
	}
	return steps
}

func TestReply_HourlyNeverAsksDestination(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	steps := visitedSteps(t, h, s, "GO", "Alice", "Mise à disposition", "Gare de Lyon", "3", "2", "Oui", "2", "2025-06-01", "09:00", "CB")
	assert.Equal(t, []models.Step{
		models.StepName, models.StepTier, models.StepPickup, models.StepHours, models.StepPassengers,
		models.StepLuggage, models.StepBags, models.StepDate, models.StepTime, models.StepPayment, models.StepPhone,
	}, steps)
	assert.NotContains(t, steps, models.StepDestination)

	r := h.engine.Snapshot(s).Reservation
	assert.Equal(t, models.TierHourly, r.ServiceTier)
	assert.Empty(t, r.Destination)
	assert.Equal(t, 3, r.Hours)
	assert.Equal(t, 240.0, r.PriceValue())
	assert.Equal(t, 2, r.BagCount)
	assert.True(t, r.HasLuggage)
	assert.Equal(t, 0, h.routing.calls, "hourly pricing never calls routing")

	h.send(t, s, "+33612345678", validCode, "Oui")
	require.Equal(t, 1, h.store.count())
	assert.Equal(t, "", h.store.inserted[0].Destination)
}

func TestReply_PremiumPassesThroughDestination(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	steps := visitedSteps(t, h, s, "GO", "Alice", "Trajet Premium", "A", "B", "1")
	assert.Equal(t, []models.Step{
		models.StepName, models.StepTier, models.StepPickup, models.StepDestination, models.StepPassengers, models.StepLuggage,
	}, steps)

	h.send(t, s, "Non", "2025-06-01", "14:00")
	r := h.engine.Snapshot(s).Reservation
	assert.InDelta(t, 61.5, r.PriceValue(), 0.001)
}

func TestReply_InvalidInputKeepsStep(t *testing.T) {
	cases := []struct {
		name    string
		prefix  []string
		invalid string
		step    models.Step
	}{
		{"welcome", nil, "bonjour", models.StepWelcome},
		{"tier", []string{"GO", "Alice"}, "Helicopter", models.StepTier},
		{"hours", []string{"GO", "Alice", "Hourly", "A"}, "49", models.StepHours},
		{"passengers", []string{"GO", "Alice", "DirectComfort", "A", "B"}, "9", models.StepPassengers},
		{"luggage", []string{"GO", "Alice", "DirectComfort", "A", "B", "2"}, "peut-être", models.StepLuggage},
		{"bags", []string{"GO", "Alice", "DirectComfort", "A", "B", "2", "Oui"}, "11", models.StepBags},
		{"past date", []string{"GO", "Alice", "DirectComfort", "A", "B", "2", "Non"}, "2025-04-30", models.StepDate},
		{"time", []string{"GO", "Alice", "DirectComfort", "A", "B", "2", "Non", "2025-06-01"}, "midi", models.StepTime},
		{"payment", []string{"GO", "Alice", "DirectComfort", "A", "B", "2", "Non", "2025-06-01", "14:00"}, "Bitcoin", models.StepPayment},
		{"phone", []string{"GO", "Alice", "DirectComfort", "A", "B", "2", "Non", "2025-06-01", "14:00", "CB"}, "12345", models.StepPhone},
		{"code", directToConfirm[:11], "abcd", models.StepCode},
		{"confirm", directToConfirm, "peut-être", models.StepConfirm},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			s := h.start(t)
			h.send(t, s, tc.prefix...)
			require.Equal(t, tc.step, h.engine.Snapshot(s).Step)
			before := h.engine.Snapshot(s).Reservation

			turn := h.send(t, s, tc.invalid)
			assert.Equal(t, tc.step, turn.Step)
			bot := botMessages(turn.Messages)
			require.Len(t, bot, 1)
			assert.Equal(t, models.KindError, bot[0].Kind)
			assert.Equal(t, before, h.engine.Snapshot(s).Reservation)
		})
	}
}

func TestReply_EmptyInput(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	turn := h.send(t, s, "   ")
	require.Len(t, turn.Messages, 1)
	assert.Equal(t, models.SenderBot, turn.Messages[0].Sender)
	assert.Equal(t, models.StepWelcome, turn.Step)
}

func TestReply_GuardNotReady(t *testing.T) {
	h := newHarness(t)
	s := h.engine.Start("s-1")
	turn := h.send(t, s, directToConfirm[:11]...)

	assert.Equal(t, models.StepPhone, turn.Step)
	bot := botMessages(turn.Messages)
	require.Len(t, bot, 1)
	assert.Contains(t, bot[0].Text, "anti-robot")
	assert.Equal(t, 0, h.provider.issuedCount())
	assert.Empty(t, h.engine.Snapshot(s).Reservation.Phone)

	require.NoError(t, h.engine.ArmGuard(context.Background(), s, "widget-token"))
	turn = h.send(t, s, "+33612345678")
	assert.Equal(t, models.StepCode, turn.Step)
}

func TestReply_NationalPhoneIsNormalized(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm[:10]...)
	h.send(t, s, "06 12 34 56 78")
	assert.Equal(t, "+33612345678", h.engine.Snapshot(s).Reservation.Phone)
}

func TestReply_CodeMismatchKeepsChallenge(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm[:11]...)

	turn := h.send(t, s, "000000")
	assert.Equal(t, models.StepCode, turn.Step)
	assert.Contains(t, botMessages(turn.Messages)[0].Text, "Code incorrect")
	assert.False(t, h.engine.Snapshot(s).Reservation.PhoneVerified)

	turn = h.send(t, s, validCode)
	assert.Equal(t, models.StepConfirm, turn.Step)
	assert.Equal(t, 1, h.provider.issuedCount(), "no second SMS on retry")
}

func TestReply_ExpiredCodeIsReissued(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm[:11]...)
	h.provider.expired["ch-1"] = true

	turn := h.send(t, s, validCode)
	assert.Equal(t, models.StepCode, turn.Step)
	bot := botMessages(turn.Messages)
	require.Len(t, bot, 1)
	assert.Contains(t, bot[0].Text, "nouveau code")
	assert.Equal(t, 2, h.provider.issuedCount())

	turn = h.send(t, s, validCode)
	assert.Equal(t, models.StepConfirm, turn.Step)
}

func TestReply_FareProviderFailure(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.routing.err = errors.New("OVER_QUERY_LIMIT")

	turn := h.send(t, s, directToConfirm[:9]...)
	assert.Equal(t, models.StepTime, turn.Step)
	assert.Contains(t, botMessages(turn.Messages)[0].Text, "tarif")
	r := h.engine.Snapshot(s).Reservation
	assert.Nil(t, r.Price)
	assert.Empty(t, r.Time)

	h.routing.err = nil
	turn = h.send(t, s, "14:00")
	assert.Equal(t, models.StepPayment, turn.Step)
	assert.Equal(t, 2, h.routing.calls)
}

func TestReply_FareProviderTimeout(t *testing.T) {
	h := newHarness(t)
	h.engine.timeout = 20 * time.Millisecond
	h.routing.block = true
	s := h.start(t)

	turn := h.send(t, s, directToConfirm[:9]...)
	assert.Equal(t, models.StepTime, turn.Step)
	assert.Contains(t, botMessages(turn.Messages)[0].Text, "trop de temps")
}

func TestReply_SubmitFailureAllowsRetry(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm...)
	h.store.insertErr = errors.New("no primary")

	turn := h.send(t, s, "Oui")
	assert.Equal(t, models.StepConfirm, turn.Step)
	assert.Contains(t, botMessages(turn.Messages)[0].Text, "Erreur lors de l'enregistrement")
	assert.Equal(t, models.StatusDraft, h.engine.Snapshot(s).Reservation.Status)

	h.store.insertErr = nil
	turn = h.send(t, s, "Oui")
	assert.Equal(t, models.StepCompleted, turn.Step)
	assert.Equal(t, 1, h.store.count())
}

func TestReply_CancelThenRestart(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm...)

	turn := h.send(t, s, "Non")
	assert.Equal(t, models.StepRestart, turn.Step)
	assert.Equal(t, models.StatusCancelled, h.engine.Snapshot(s).Reservation.Status)
	assert.Equal(t, 0, h.store.count())

	turn = h.send(t, s, "Oui")
	assert.Equal(t, models.StepWelcome, turn.Step)
	require.Len(t, turn.Messages, 1)
	assert.Equal(t, models.KindPrompt, turn.Messages[0].Kind)

	snap := h.engine.Snapshot(s)
	assert.Len(t, snap.Messages, 1)
	assert.Equal(t, models.StatusDraft, snap.Reservation.Status)
	assert.Empty(t, snap.Reservation.Name)
	assert.True(t, snap.GuardArmed)

	// The second pass goes through a fresh verification.
	h.send(t, s, directToConfirm...)
	h.send(t, s, "Oui")
	assert.Equal(t, 1, h.store.count())
	assert.Equal(t, 2, h.provider.issuedCount())
}

func TestReply_CancelThenEnd(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm...)
	h.send(t, s, "Non")

	turn := h.send(t, s, "Non")
	assert.Equal(t, models.StepEnded, turn.Step)
	assert.False(t, h.engine.Snapshot(s).GuardArmed)

	turn = h.send(t, s, "Oui")
	assert.Equal(t, models.StepEnded, turn.Step)
	require.Len(t, turn.Messages, 1)
	assert.Equal(t, 0, h.store.count())
}

func TestBack_ClearsDownstreamPrice(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm[:9]...)
	require.NotNil(t, h.engine.Snapshot(s).Reservation.Price)

	turn, err := h.engine.Back(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, models.StepTime, turn.Step)
	require.Len(t, turn.Messages, 1)
	assert.Equal(t, models.KindPrompt, turn.Messages[0].Kind)
	r := h.engine.Snapshot(s).Reservation
	assert.Nil(t, r.Price)
	assert.Empty(t, r.Time)
	assert.Equal(t, "2025-06-01", r.Date)

	_, err = h.engine.Back(context.Background(), s)
	require.NoError(t, err)
	r = h.engine.Snapshot(s).Reservation
	assert.Empty(t, r.Date)
	assert.Nil(t, r.Price)

	h.send(t, s, "2025-06-02", "15:00")
	r = h.engine.Snapshot(s).Reservation
	assert.Equal(t, "2025-06-02", r.Date)
	assert.InDelta(t, 36.9, r.PriceValue(), 0.001)
}

func TestBack_TruncatesTranscript(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, "GO", "Alice", "Helicopter", "DirectComfort")
	require.Equal(t, models.StepPickup, h.engine.Snapshot(s).Step)

	_, err := h.engine.Back(context.Background(), s)
	require.NoError(t, err)
	msgs := h.engine.Snapshot(s).Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, models.StepTier, last.Step)
	assert.Equal(t, models.KindPrompt, last.Kind)
	assert.Empty(t, h.engine.Snapshot(s).Reservation.ServiceTier)
	assert.Equal(t, "Alice", h.engine.Snapshot(s).Reservation.Name)
}

func TestBack_FromHoursClearsHourlyPrice(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, "GO", "Alice", "Hourly", "A", "3")
	snap := h.engine.Snapshot(s).Reservation
	require.Equal(t, 240.0, snap.PriceValue())

	_, err := h.engine.Back(context.Background(), s)
	require.NoError(t, err)
	r := h.engine.Snapshot(s).Reservation
	assert.Equal(t, models.StepHours, h.engine.Snapshot(s).Step)
	assert.Zero(t, r.Hours)
	assert.Nil(t, r.Price)
}

func TestBack_ToPhoneDiscardsChallenge(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm[:11]...)
	require.Equal(t, verification.StateIssued, h.engine.Snapshot(s).Verification)

	_, err := h.engine.Back(context.Background(), s)
	require.NoError(t, err)
	snap := h.engine.Snapshot(s)
	assert.Equal(t, models.StepPhone, snap.Step)
	assert.Equal(t, verification.StateIdle, snap.Verification)
	assert.Equal(t, []string{"ch-1"}, h.provider.revoked)
	assert.Empty(t, snap.Reservation.Phone)

	h.send(t, s, "+33698765432")
	assert.Equal(t, 2, h.provider.issuedCount())
}

func TestBack_PastPickupResetsFareCache(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm[:9]...)
	require.Equal(t, 1, s.fares.Len())

	for i := 0; i < 6; i++ { // payment -> time -> date -> luggage -> passengers -> destination -> pickup
		_, err := h.engine.Back(context.Background(), s)
		require.NoError(t, err)
	}
	assert.Equal(t, models.StepPickup, h.engine.Snapshot(s).Step)
	assert.Equal(t, 0, s.fares.Len())
}

func TestBack_NotAllowed(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	_, err := h.engine.Back(context.Background(), s)
	assert.ErrorIs(t, err, ErrCannotGoBack)

	h.send(t, s, directToConfirm...)
	h.send(t, s, "Oui")
	_, err = h.engine.Back(context.Background(), s)
	assert.ErrorIs(t, err, ErrCannotGoBack)
}

func TestClose_ReleasesGuardAndChallenge(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)
	h.send(t, s, directToConfirm[:11]...)

	h.engine.Close(context.Background(), s)
	h.engine.Close(context.Background(), s)

	snap := h.engine.Snapshot(s)
	assert.True(t, snap.Closed)
	assert.False(t, snap.GuardArmed)
	assert.Equal(t, []string{"ch-1"}, h.provider.revoked)

	_, err := h.engine.Reply(context.Background(), s, validCode)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCloseIfIdle(t *testing.T) {
	h := newHarness(t)
	s := h.start(t)

	assert.False(t, h.engine.CloseIfIdle(context.Background(), s, testNow.Add(-time.Minute)))
	assert.True(t, h.engine.CloseIfIdle(context.Background(), s, testNow.Add(time.Minute)))
	assert.False(t, h.engine.CloseIfIdle(context.Background(), s, testNow.Add(time.Minute)))
}

type panickingSubmitter struct{}

func (panickingSubmitter) Submit(context.Context, *models.Reservation) (string, error) {
	panic("nil map")
}

func TestReply_PanicBecomesGenericError(t *testing.T) {
	h := newHarness(t)
	h.engine.submitter = panickingSubmitter{}
	s := h.start(t)
	h.send(t, s, directToConfirm...)

	turn, err := h.engine.Reply(context.Background(), s, "Oui")
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirm, turn.Step)
	bot := botMessages(turn.Messages)
	require.Len(t, bot, 1)
	assert.Contains(t, bot[0].Text, "erreur inattendue")
}

func TestOptions(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"Trajet classique", "Trajet Premium", "Mise à disposition"}, h.engine.options(models.StepTier))
	assert.Equal(t, []string{"Oui", "Non"}, h.engine.options(models.StepConfirm))
	assert.Equal(t, []string{"Espèces", "CB"}, h.engine.options(models.StepPayment))
	assert.Equal(t, []string{"1", "2", "3", "4+"}, h.engine.options(models.StepBags))
	assert.Nil(t, h.engine.options(models.StepName))
}
