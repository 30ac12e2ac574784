// Package gate implements the two-step admin login: credentials, then a
// one-time passcode that must be entered before a countdown runs out.
//
// A Gate serialises every state change behind one mutex. Network calls run
// outside it so the countdown keeps ticking while a request is in flight.
// Each entry into the otp state gets a new epoch; responses and ticks that
// belong to an older epoch are discarded.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/admin-session-gate/internal/domain"
	"github.com/filecoin-project/go-clock"
)

// DefaultOTPTTL is the client-side lifetime of an OTP challenge.
const DefaultOTPTTL = 60 * time.Second

// markAdminTimeout bounds the session write made while the gate is locked.
const markAdminTimeout = 5 * time.Second

// User-facing messages.
const (
	MsgUnableToConnect = "Unable to connect to server. Please try again."
	MsgOTPExpired      = "OTP expired. Please login again."
	MsgSessionFailed   = "Could not save your session. Please try again."

	msgLoginFailed = "Login failed"
	msgOTPFailed   = "OTP verification failed"
)

type State string

const (
	StateLogin State = "login"
	StateOTP   State = "otp"
)

// Authenticator is the external Authentication Service.
type Authenticator interface {
	RequestLogin(ctx context.Context, email, password string) (*domain.AuthReply, error)
	VerifyOTP(ctx context.Context, email, otp string) (*domain.AuthReply, error)
}

// Session receives the admin flag once an OTP has been verified.
type Session interface {
	MarkAdmin(ctx context.Context, email, token string) error
}

// Snapshot is a copy of the gate's observable state.
type Snapshot struct {
	State     State  `json:"state"`
	Email     string `json:"email,omitempty"`
	Code      string `json:"code"`
	Remaining int    `json:"remaining"` // whole seconds left on the countdown
	Loading   bool   `json:"loading"`
	Message   string `json:"message,omitempty"`
	Notice    string `json:"notice,omitempty"`
	Verified  bool   `json:"verified"`
}

type Option func(*Gate)

func WithClock(c clock.Clock) Option {
	return func(g *Gate) { g.clock = c }
}

func WithTTL(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.ttl = d
		}
	}
}

// Gate is one admin login flow. The zero value is not usable; call New.
type Gate struct {
	auth    Authenticator
	session Session
	clock   clock.Clock
	ttl     time.Duration

	mu       sync.Mutex
	state    State
	email    string
	code     string
	deadline time.Time
	loading  bool
	reqSeq   uint64
	message  string
	notice   string
	verified bool
	closed   bool
	epoch    uint64
	release  func() // cancels the countdown; nil outside the otp state

	countdowns sync.WaitGroup
}

func New(auth Authenticator, session Session, opts ...Option) *Gate {
	g := &Gate{
		auth:    auth,
		session: session,
		clock:   clock.New(),
		ttl:     DefaultOTPTTL,
		state:   StateLogin,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SubmitCredentials sends the primary credentials. On success the gate
// enters the otp state with a full countdown.
func (g *Gate) SubmitCredentials(ctx context.Context, email, password string) (Snapshot, error) {
	g.mu.Lock()
	if err := g.beginLocked(StateLogin); err != nil {
		defer g.mu.Unlock()
		return g.snapshotLocked(), err
	}
	seq, epoch := g.reqSeq, g.epoch
	g.mu.Unlock()

	reply, err := g.auth.RequestLogin(ctx, email, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	if stale := g.finishLocked(seq, epoch); stale != nil {
		return g.snapshotLocked(), stale
	}
	if err != nil {
		g.message = failureMessage(err, msgLoginFailed)
		return g.snapshotLocked(), err
	}
	g.enterOTPLocked(email)
	g.notice = reply.Message
	return g.snapshotLocked(), nil
}

// SubmitOTP verifies code for the email captured by SubmitCredentials.
// On success the session flag is set, the countdown is released and the
// gate closes. On failure the countdown keeps running.
func (g *Gate) SubmitOTP(ctx context.Context, code string) (Snapshot, error) {
	g.mu.Lock()
	if err := g.beginLocked(StateOTP); err != nil {
		defer g.mu.Unlock()
		return g.snapshotLocked(), err
	}
	g.code = code
	seq, epoch, email := g.reqSeq, g.epoch, g.email
	g.mu.Unlock()

	reply, err := g.auth.VerifyOTP(ctx, email, code)

	g.mu.Lock()
	defer g.mu.Unlock()
	if stale := g.finishLocked(seq, epoch); stale != nil {
		return g.snapshotLocked(), stale
	}
	if err != nil {
		g.message = failureMessage(err, msgOTPFailed)
		return g.snapshotLocked(), err
	}
	// Held under the lock so an expiry tick cannot slip in between
	// verification and the flag being written. Snapshots and ticks of this
	// gate wait for the store for at most markAdminTimeout.
	mctx, cancel := context.WithTimeout(ctx, markAdminTimeout)
	defer cancel()
	if err := g.session.MarkAdmin(mctx, email, reply.Token); err != nil {
		slog.Warn("failed to persist admin session after otp verification", "err", err)
		g.message = MsgSessionFailed
		return g.snapshotLocked(), err
	}
	g.exitOTPLocked()
	g.verified = true
	g.closed = true
	g.code = ""
	g.message = ""
	g.notice = reply.Message
	return g.snapshotLocked(), nil
}

// EnterCode records the digits typed so far. Expiry clears them.
func (g *Gate) EnterCode(code string) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return g.snapshotLocked(), domain.ErrGateClosed
	}
	if g.state != StateOTP {
		return g.snapshotLocked(), fmt.Errorf("no otp challenge pending: %w", domain.ErrConflict)
	}
	g.code = code
	return g.snapshotLocked(), nil
}

// Close unmounts the gate: the countdown is released and late responses
// are discarded. Safe to call more than once.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.exitOTPLocked()
}

func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Closed reports whether the gate finished (verified) or was unmounted.
func (g *Gate) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// beginLocked checks that a submit is allowed in want and marks it in flight.
func (g *Gate) beginLocked(want State) error {
	switch {
	case g.closed:
		return domain.ErrGateClosed
	case g.loading:
		return domain.ErrBusy
	case g.state != want:
		return fmt.Errorf("submit not allowed in %s state: %w", g.state, domain.ErrConflict)
	}
	g.loading = true
	g.reqSeq++
	g.message = ""
	g.notice = ""
	return nil
}

// finishLocked clears the loading flag owned by request seq and reports
// whether the response arrived after the gate moved on.
func (g *Gate) finishLocked(seq, epoch uint64) error {
	if g.reqSeq == seq {
		g.loading = false
	}
	if g.closed {
		return domain.ErrGateClosed
	}
	if g.epoch != epoch {
		return fmt.Errorf("otp challenge no longer active: %w", domain.ErrConflict)
	}
	return nil
}

func (g *Gate) enterOTPLocked(email string) {
	g.epoch++
	g.state = StateOTP
	g.email = email
	g.code = ""
	g.message = ""
	g.deadline = g.clock.Now().Add(g.ttl)
	g.release = g.startCountdown(g.epoch)
}

// exitOTPLocked releases the countdown of the current otp entry, if any.
func (g *Gate) exitOTPLocked() {
	g.epoch++
	if g.release != nil {
		g.release()
		g.release = nil
	}
}

// startCountdown acquires a one second ticker for epoch. The returned
// function cancels it and is idempotent.
func (g *Gate) startCountdown(epoch uint64) func() {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := g.clock.Ticker(time.Second)

	g.countdowns.Add(1)
	go func() {
		defer g.countdowns.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !g.tick(epoch) {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			ticker.Stop()
		})
	}
}

// tick reports whether the countdown for epoch should keep running.
func (g *Gate) tick(epoch uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.epoch != epoch || g.state != StateOTP {
		return false
	}
	if g.remainingLocked() > 0 {
		return true
	}
	g.exitOTPLocked()
	g.state = StateLogin
	g.code = ""
	g.loading = false
	g.notice = ""
	g.message = MsgOTPExpired
	return false
}

func (g *Gate) remainingLocked() int {
	if g.closed || g.state != StateOTP {
		return 0
	}
	left := g.deadline.Sub(g.clock.Now())
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func (g *Gate) snapshotLocked() Snapshot {
	return Snapshot{
		State:     g.state,
		Email:     g.email,
		Code:      g.code,
		Remaining: g.remainingLocked(),
		Loading:   g.loading,
		Message:   g.message,
		Notice:    g.notice,
		Verified:  g.verified,
	}
}

// failureMessage shows a rejection verbatim and anything else as a
// connectivity problem.
func failureMessage(err error, fallback string) string {
	var rej *domain.RejectedError
	if errors.As(err, &rej) {
		if rej.Message != "" {
			return rej.Message
		}
		return fallback
	}
	return MsgUnableToConnect
}
