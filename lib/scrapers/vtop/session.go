package vtop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"vtop-backend/lib/timezone"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// Belief is the client's three-valued opinion about the stored
// session. The server never hands out an expiry, so the belief is
// updated only by observed responses.
type Belief int

const (
	BeliefUnknown Belief = iota
	BeliefValid
	BeliefInvalid
)

func (b Belief) String() string {
	switch b {
	case BeliefValid:
		return "valid"
	case BeliefInvalid:
		return "invalid"
	}
	return "unknown"
}

// renewals are retried only for the solver's transient csrf/captcha
// hand-off rejections, and only this many times
const maxRenewAttempts = 5

type sessionState struct {
	mu       sync.Mutex
	username string
	session  Session
	belief   Belief
	loaded   bool
}

// EnsureSession leaves the client with a session it believes valid, or
// returns one of ErrMissingCredentials, ErrInvalidCredentials,
// ErrTransport. A believed-valid session is probed with a lightweight
// request first so cheap refreshes never touch the solver backend.
func (c *Client) EnsureSession(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:EnsureSession")
	defer span.End()

	creds, ok, err := c.keychain.Credentials(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read credentials: %w", err)
	}
	if !ok {
		span.SetStatus(codes.Error, ErrMissingCredentials.Error())
		return ErrMissingCredentials
	}

	c.state.mu.Lock()
	c.state.username = creds.Username
	if !c.state.loaded {
		stored, ok, err := c.keychain.Session(ctx)
		if err != nil {
			c.state.mu.Unlock()
			span.RecordError(err)
			return fmt.Errorf("read session: %w", err)
		}
		if ok {
			c.state.session = stored
		}
		c.state.loaded = true
	}
	session := c.state.session
	belief := c.state.belief
	c.state.mu.Unlock()

	if belief != BeliefInvalid && !session.IsZero() {
		alive, err := c.probe(ctx)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if alive {
			c.state.mu.Lock()
			c.state.belief = BeliefValid
			c.state.mu.Unlock()
			span.SetStatus(codes.Ok, "session reused")
			return nil
		}
		slog.DebugContext(ctx, "stored session is stale, renewing", "belief", belief.String())
		c.state.mu.Lock()
		c.state.belief = BeliefInvalid
		c.state.mu.Unlock()
	}

	return c.renew(ctx, creds)
}

// probe issues the semester-list request, the cheapest page that still
// requires authentication. A not-found or a bounce toward the login
// page means the session is stale; transport errors are surfaced, not
// interpreted.
func (c *Client) probe(ctx context.Context) (bool, error) {
	session, username := c.snapshotSession()

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("cookie", session.Cookie).
		SetFormData(map[string]string{
			"_csrf":        session.CSRF,
			"authorizedID": username,
			"verifyMenu":   "true",
			"x":            timezone.Now().UTC().Format(time.RFC1123),
		}).
		Post(semesterListEndpoint)
	if err != nil && !errors.Is(err, resty.ErrAutoRedirectDisabled) {
		return false, fmt.Errorf("%w: %s", ErrTransport, err)
	}
	return res.StatusCode() == 200, nil
}

func (c *Client) renew(ctx context.Context, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "client:renew")
	defer span.End()

	// one renewal at a time; concurrent fetchers that all saw the same
	// stale session queue up here and reuse the winner's session
	c.renewMu.Lock()
	defer c.renewMu.Unlock()

	c.state.mu.Lock()
	alreadyRenewed := c.state.belief == BeliefValid && !c.state.session.IsZero()
	c.state.mu.Unlock()
	if alreadyRenewed {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= maxRenewAttempts; attempt++ {
		session, err := c.solver.Solve(ctx, creds.Username, creds.Password)
		if err == nil {
			// cookie and token swap together or not at all
			c.state.mu.Lock()
			c.state.session = session
			c.state.belief = BeliefValid
			c.state.mu.Unlock()

			err = c.keychain.SetSession(ctx, session)
			if err != nil {
				span.RecordError(err)
				return fmt.Errorf("persist session: %w", err)
			}
			slog.InfoContext(ctx, "session renewed", "attempt", attempt)
			return nil
		}

		if !errors.Is(err, errSolverHandoff) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "renewal failed")
			return err
		}
		slog.WarnContext(
			ctx, "solver handoff failed, retrying",
			"attempt", attempt,
			"err", err,
		)
		lastErr = err
	}

	span.SetStatus(codes.Error, "renewal attempts exhausted")
	return fmt.Errorf("%w: %d attempts: %s", ErrInvalidCredentials, maxRenewAttempts, lastErr)
}

// invalidateSession drops the stored cookie/token after the portal
// answered not-found on an authenticated request.
func (c *Client) invalidateSession(ctx context.Context) {
	c.state.mu.Lock()
	c.state.session = Session{}
	c.state.belief = BeliefInvalid
	c.state.mu.Unlock()

	err := c.keychain.ClearSession(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to clear stored session", "err", err)
	}
}

// SessionBelief reports the current belief, mainly for tests and the
// CLI's status output.
func (c *Client) SessionBelief() Belief {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.belief
}
