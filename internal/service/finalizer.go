package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/Abanoub-Magdy-gabra/style-checkout/pkg/errors"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/checkout"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/repository"
)

// Persister writes a confirmed order to its storage targets. Implemented by
// Coordinator; narrowed to an interface so tests can observe or stall writes.
type Persister interface {
	Persist(ctx context.Context, draft domain.OrderDraft, pay domain.PaymentResult, userID *string) DualWriteResult
}

// EventSink receives terminal finalization notifications. Publish failures are
// logged and never affect the finalization outcome.
type EventSink interface {
	OrderFinalized(ctx context.Context, nav domain.NavigationPayload) error
	FinalizationFailed(ctx context.Context, orderID, reason string) error
}

// FinalizerConfig carries the timing knobs of a finalization run.
type FinalizerConfig struct {
	// Deadline bounds the time between payment success and a terminal state.
	// If the persistence sequence has not finished by then, the run is forced
	// to Succeeded so the user is never stuck on a processing view.
	Deadline time.Duration

	// ProcessingDelay is an intentional pause after persistence so the
	// processing view is perceivable even when storage responds instantly.
	ProcessingDelay time.Duration
}

// Snapshot is a point-in-time read of one finalization session.
type Snapshot struct {
	SessionID      string                    `json:"session_id"`
	State          domain.FinalizationState  `json:"state"`
	Draft          domain.OrderDraft         `json:"draft"`
	FailureMessage string                    `json:"failure_message,omitempty"`
	Warnings       []string                  `json:"warnings,omitempty"`
	Navigation     *domain.NavigationPayload `json:"navigation,omitempty"`
}

// session is one checkout attempt's mutable state. All fields below mu are
// guarded by it. completed and gen together form the single-use latch:
// completed arbitrates between the persistence sequence and the deadline timer
// of the live attempt, while gen is bumped whenever an attempt is voided
// (payment failure, retry, teardown) so a stale run's result can never land on
// a later attempt. cancelRun stops the live run's deadline timer and its
// in-flight writes when the attempt is voided.
type session struct {
	id             string
	cartID         string
	userID         *string
	shippingMethod string
	address        domain.ShippingAddress

	mu             sync.Mutex
	state          domain.FinalizationState
	draft          domain.OrderDraft
	payment        domain.PaymentResult
	failureMessage string
	warnings       []string
	navigation     *domain.NavigationPayload
	completed      bool
	gen            uint64
	cancelRun      context.CancelFunc
	startedAt      time.Time
}

// Finalizer owns the checkout finalization lifecycle: it validates the
// checkout context into a session, reacts to the payment simulator's verdict,
// drives the persistence sequence under a hard deadline, and exposes retry and
// teardown. One session per checkout attempt; sessions are independent.
type Finalizer struct {
	calc      *checkout.Calculator
	drafts    *checkout.DraftBuilder
	persister Persister
	carts     repository.CartStore
	events    EventSink
	logger    *slog.Logger
	cfg       FinalizerConfig

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewFinalizer wires the finalization orchestrator.
func NewFinalizer(calc *checkout.Calculator, drafts *checkout.DraftBuilder, persister Persister, carts repository.CartStore, events EventSink, logger *slog.Logger, cfg FinalizerConfig) *Finalizer {
	if cfg.Deadline <= 0 {
		cfg.Deadline = 10 * time.Second
	}
	if cfg.ProcessingDelay < 0 {
		cfg.ProcessingDelay = 0
	}
	return &Finalizer{
		calc:      calc,
		drafts:    drafts,
		persister: persister,
		carts:     carts,
		events:    events,
		logger:    logger,
		cfg:       cfg,
		sessions:  make(map[string]*session),
	}
}

// CreateSessionInput is the checkout context supplied when a confirmation
// session is opened. Address is a pointer: a user who navigated straight to
// confirmation has none.
type CreateSessionInput struct {
	CartID         string
	UserID         *string
	ShippingMethod string
	Address        *domain.ShippingAddress
}

// CreateSession validates the checkout context, derives totals and builds the
// draft for this attempt. An invalid context never creates a session and never
// touches storage.
func (f *Finalizer) CreateSession(ctx context.Context, in CreateSessionInput) (Snapshot, error) {
	entries, err := f.carts.Items(ctx, in.CartID)
	if err != nil {
		return Snapshot{}, apperrors.Internal(apperrors.Wrap(err, "load cart"))
	}

	items, err := checkout.ValidateContext(in.Address, entries)
	if err != nil {
		return Snapshot{}, err
	}

	totals := f.calc.Calculate(items, in.ShippingMethod)

	draft, err := f.drafts.Build(items, *in.Address, totals)
	if err != nil {
		return Snapshot{}, apperrors.DraftBuild(err)
	}

	s := &session{
		id:             draft.ID,
		cartID:         in.CartID,
		userID:         in.UserID,
		shippingMethod: in.ShippingMethod,
		address:        *in.Address,
		state:          domain.StateIdle,
		draft:          draft,
	}

	f.mu.Lock()
	f.sessions[s.id] = s
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "confirmation session created",
		slog.String("session_id", s.id),
		slog.String("cart_id", in.CartID),
		slog.Int64("total", totals.Total),
	)

	return f.snapshot(s), nil
}

// Get returns the session's current snapshot.
func (f *Finalizer) Get(sessionID string) (Snapshot, error) {
	s, err := f.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return f.snapshot(s), nil
}

// HandlePaymentSuccess accepts the simulator's success attestation and starts
// the persistence sequence. Only an Idle session transitions; any other state
// makes this a no-op that reports the current snapshot, so a duplicated
// success callback cannot start a second run.
func (f *Finalizer) HandlePaymentSuccess(ctx context.Context, sessionID string, pay domain.PaymentResult) (Snapshot, error) {
	s, err := f.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.state != domain.StateIdle {
		s.mu.Unlock()
		return f.snapshot(s), nil
	}
	s.state = domain.StateProcessing
	s.payment = pay
	s.startedAt = time.Now()
	s.gen++
	// Snapshot the attempt's inputs: a later retry may swap the draft while
	// this run is still writing. The generation stamp ties the run's result
	// to this attempt and no other.
	att := attempt{draft: s.draft, cartID: s.cartID, userID: s.userID, pay: pay, gen: s.gen}
	// The run outlives the HTTP request that reported the payment: detach the
	// request's cancellation but keep its values for logging, and hand the
	// session a cancel handle so voiding the attempt stops the run.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	s.mu.Unlock()

	f.logger.InfoContext(ctx, "payment success reported, finalizing",
		slog.String("session_id", sessionID),
		slog.String("payment_id", pay.PaymentID),
		slog.Bool("simulated", pay.Simulated),
	)

	go f.run(runCtx, s, att)

	return f.snapshot(s), nil
}

// HandlePaymentFailure records the simulator's failure verdict. A session
// already in a terminal state keeps it; the duplicate or stale verdict is
// logged and ignored. Failing a Processing session voids the in-flight run:
// its deadline timer and writes are cancelled and its result is discarded.
func (f *Finalizer) HandlePaymentFailure(ctx context.Context, sessionID, message string) (Snapshot, error) {
	s, err := f.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	appErr := apperrors.PaymentFailed(message)

	s.mu.Lock()
	if s.state.IsTerminal() {
		state := s.state
		s.mu.Unlock()
		f.logger.WarnContext(ctx, "payment failure reported in terminal state, ignored",
			slog.String("session_id", sessionID),
			slog.String("state", string(state)),
		)
		return f.snapshot(s), nil
	}
	s.completed = true
	s.gen++
	s.state = domain.StateFailed
	s.failureMessage = appErr.Message
	draftID := s.draft.ID
	cancel := s.cancelRun
	s.cancelRun = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	finalizationRuns.WithLabelValues("failed").Inc()

	f.logger.WarnContext(ctx, "payment failed",
		slog.String("session_id", sessionID),
		slog.String("reason", appErr.Message),
	)

	if err := f.events.FinalizationFailed(ctx, draftID, appErr.Message); err != nil {
		f.logger.WarnContext(ctx, "finalization failed event publish failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	return f.snapshot(s), nil
}

// Retry resets a Failed session back to Idle for another attempt. The cart is
// re-read and re-validated, and a fresh draft with a new identifier replaces
// the old one; draft identifiers are never reused across attempts.
func (f *Finalizer) Retry(ctx context.Context, sessionID string) (Snapshot, error) {
	s, err := f.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.state != domain.StateFailed {
		state := s.state
		s.mu.Unlock()
		return Snapshot{}, apperrors.InvalidInput("retry is only allowed from the failed state, current state is " + string(state))
	}
	addr := s.address
	method := s.shippingMethod
	cartID := s.cartID
	s.mu.Unlock()

	entries, err := f.carts.Items(ctx, cartID)
	if err != nil {
		return Snapshot{}, apperrors.Internal(apperrors.Wrap(err, "load cart"))
	}

	items, err := checkout.ValidateContext(&addr, entries)
	if err != nil {
		return Snapshot{}, err
	}

	totals := f.calc.Calculate(items, method)

	draft, err := f.drafts.Build(items, addr, totals)
	if err != nil {
		return Snapshot{}, apperrors.DraftBuild(err)
	}

	s.mu.Lock()
	if s.state != domain.StateFailed {
		s.mu.Unlock()
		return Snapshot{}, apperrors.InvalidInput("session left the failed state during retry")
	}
	s.state = domain.StateIdle
	s.draft = draft
	s.payment = domain.PaymentResult{}
	s.failureMessage = ""
	s.warnings = nil
	s.navigation = nil
	s.completed = false
	// Re-arming the latch is safe only because the generation moves past any
	// run still draining from the aborted attempt.
	s.gen++
	cancel := s.cancelRun
	s.cancelRun = nil

	// Keep the registry keyed by the live draft so Get works after retry.
	oldID := s.id
	s.id = draft.ID
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	f.mu.Lock()
	delete(f.sessions, oldID)
	f.sessions[draft.ID] = s
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "session reset for retry",
		slog.String("previous_session_id", oldID),
		slog.String("session_id", draft.ID),
	)

	return f.snapshot(s), nil
}

// Teardown removes the session and cancels any in-flight run, so a late
// persistence result or deadline expiry cannot transition a session the user
// has already left, and no timer lingers past the teardown.
func (f *Finalizer) Teardown(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	s, ok := f.sessions[sessionID]
	if ok {
		delete(f.sessions, sessionID)
	}
	f.mu.Unlock()

	if !ok {
		return apperrors.NotFound("session", sessionID)
	}

	s.mu.Lock()
	s.completed = true
	s.gen++
	cancel := s.cancelRun
	s.cancelRun = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	f.logger.InfoContext(ctx, "session torn down", slog.String("session_id", sessionID))
	return nil
}

func (f *Finalizer) lookup(sessionID string) (*session, error) {
	f.mu.RLock()
	s, ok := f.sessions[sessionID]
	f.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("session", sessionID)
	}
	return s, nil
}

func (f *Finalizer) snapshot(s *session) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:      s.id,
		State:          s.state,
		Draft:          s.draft,
		FailureMessage: s.failureMessage,
	}
	if len(s.warnings) > 0 {
		snap.Warnings = append([]string(nil), s.warnings...)
	}
	if s.navigation != nil {
		nav := *s.navigation
		snap.Navigation = &nav
	}
	return snap
}

// attempt is the immutable input of one finalization run, captured at the
// Idle to Processing transition. gen is the session generation at capture
// time; a result whose generation no longer matches the session's is stale
// and discarded.
type attempt struct {
	draft  domain.OrderDraft
	cartID string
	userID *string
	pay    domain.PaymentResult
	gen    uint64
}

type runOutcome struct {
	result DualWriteResult
	forced bool
}

// run races the persistence sequence against the deadline. Whichever side
// finishes first performs the single terminal transition; the loser finds the
// latch set and does nothing. The sequence goroutine is never cancelled by the
// deadline, so a slow primary write still lands after the user has moved on.
// Voiding the attempt (payment failure, retry, teardown) cancels ctx, which
// stops the timer and discards the run entirely.
func (f *Finalizer) run(ctx context.Context, s *session, att attempt) {
	done := make(chan DualWriteResult, 1)
	go func() {
		done <- f.runSequence(ctx, att)
	}()

	timer := time.NewTimer(f.cfg.Deadline)
	defer timer.Stop()

	select {
	case result := <-done:
		f.complete(ctx, s, att, runOutcome{result: result})
	case <-timer.C:
		deadlineForced.Inc()
		f.logger.WarnContext(ctx, "finalization deadline reached, forcing success",
			slog.String("session_id", att.draft.ID),
			slog.Duration("deadline", f.cfg.Deadline),
		)
		f.complete(ctx, s, att, runOutcome{forced: true})
	case <-ctx.Done():
		f.logger.InfoContext(ctx, "finalization run cancelled",
			slog.String("session_id", att.draft.ID),
		)
	}
}

// runSequence is the happy-path body of a finalization: persist to both
// targets, hold the processing view for a moment, then clear the cart. Cart
// clearing is best-effort; a confirmed order is never failed over it.
func (f *Finalizer) runSequence(ctx context.Context, att attempt) DualWriteResult {
	result := f.persister.Persist(ctx, att.draft, att.pay, att.userID)

	if f.cfg.ProcessingDelay > 0 {
		delay := time.NewTimer(f.cfg.ProcessingDelay)
		select {
		case <-delay.C:
		case <-ctx.Done():
			delay.Stop()
		}
	}

	if ctx.Err() != nil {
		// The attempt was voided while writing; the cart belongs to whatever
		// attempt the user makes next.
		return result
	}

	if err := f.carts.Clear(ctx, att.cartID); err != nil {
		cartClearFailures.Inc()
		f.logger.WarnContext(ctx, "cart clear failed after confirmed order",
			slog.String("session_id", att.draft.ID),
			slog.String("cart_id", att.cartID),
			slog.String("error", err.Error()),
		)
	}

	return result
}

// complete performs the terminal Succeeded transition exactly once per
// attempt: the latch arbitrates between the normal and the deadline path, and
// the generation check drops results from attempts the session has moved past.
// A primary-store failure degrades to a user-facing warning; a fallback
// failure is logged only. Neither fails the finalization.
func (f *Finalizer) complete(ctx context.Context, s *session, att attempt, out runOutcome) {
	s.mu.Lock()
	if s.completed || att.gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.completed = true
	s.cancelRun = nil
	s.state = domain.StateSucceeded

	var warnings []string
	if !out.forced && !out.result.Primary.Succeeded {
		warnings = append(warnings, "your order was saved, but it may not appear in your account history right away")
	}
	s.warnings = warnings

	nav := f.buildNavigation(att.draft, att.pay, out)
	s.navigation = &nav

	elapsed := time.Since(s.startedAt)
	s.mu.Unlock()

	finalizationRuns.WithLabelValues("succeeded").Inc()
	finalizationDuration.Observe(elapsed.Seconds())

	f.logger.InfoContext(ctx, "finalization succeeded",
		slog.String("session_id", att.draft.ID),
		slog.String("order_number", nav.OrderNumber),
		slog.Bool("forced", out.forced),
		slog.Duration("elapsed", elapsed),
	)

	if err := f.events.OrderFinalized(ctx, nav); err != nil {
		f.logger.WarnContext(ctx, "order finalized event publish failed",
			slog.String("session_id", att.draft.ID),
			slog.String("error", err.Error()),
		)
	}
}

// buildNavigation assembles the confirmation-view payload. A forced completion
// has no persistence result yet, so storage-assigned fields stay empty and the
// view falls back to draft data.
func (f *Finalizer) buildNavigation(draft domain.OrderDraft, pay domain.PaymentResult, out runOutcome) domain.NavigationPayload {
	status := domain.OrderStatusProcessing
	method := domain.PaymentMethodCard
	if pay.Simulated {
		status = domain.OrderStatusDemo
		method = domain.PaymentMethodDemoCard
	}

	nav := domain.NavigationPayload{
		OrderID:         draft.ID,
		PaymentID:       pay.PaymentID,
		Totals:          draft.Totals,
		Items:           draft.Items,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   method,
		Status:          status,
		LastFour:        pay.LastFour,
		CardBrand:       pay.CardBrand,
		OrderDate:       draft.CreatedAt,
		Simulated:       pay.Simulated,
	}

	if !out.forced {
		nav.OrderNumber = out.result.OrderNumber
		nav.EstimatedDelivery = out.result.EstimatedDelivery
		if !out.result.CreatedAt.IsZero() {
			nav.OrderDate = out.result.CreatedAt
		}
	}

	return nav
}
