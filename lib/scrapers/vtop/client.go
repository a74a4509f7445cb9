package vtop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
	"vtop-backend/lib/telemetry"
	"vtop-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/vtop")

const (
	semesterListEndpoint     = "/vtop/academics/common/StudentAttendance"
	attendanceEndpoint       = "/vtop/processViewStudentAttendance"
	attendanceDetailEndpoint = "/vtop/processViewAttendanceDetail"
	marksEndpoint            = "/vtop/examinations/doStudentMarkView"
	examScheduleEndpoint     = "/vtop/examinations/doSearchExamScheduleForStudent"
	timetableEndpoint        = "/vtop/processViewTimeTable"
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	solver   *SolverClient
	keychain Keychain
	state    sessionState
	renewMu  sync.Mutex
}

type ClientOptions struct {
	BaseUrl  string
	Solver   *SolverClient
	Keychain Keychain
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	// the portal signals a dead session by bouncing to the login page;
	// following redirects would turn that into an indistinguishable 200
	client.SetRedirectPolicy(resty.NoRedirectPolicy())
	client.SetTimeout(time.Second * 30)

	// the portal throttles bursty clients; 2 requests max per second,
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(2, 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "scrapers/vtop/http")

	return &Client{
		BaseUrl:  baseUrl,
		Http:     client,
		solver:   opts.Solver,
		keychain: opts.Keychain,
	}, nil
}

// snapshotSession reads cookie, csrf and username in one critical
// section. A renewal on another goroutine swaps the whole session; a
// request must never observe a torn old-csrf/new-cookie pair.
func (c *Client) snapshotSession() (Session, string) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.session, c.state.username
}

func (c *Client) username() string {
	_, username := c.snapshotSession()
	return username
}

// postPage runs one authenticated portal POST and classifies the
// response per the session lifecycle rules: a not-found or a bounce
// toward the login page means the session died even if a probe just
// said otherwise. extra is merged over the base form every data
// endpoint expects (csrf token, registration number, cache buster).
func (c *Client) postPage(ctx context.Context, endpoint string, extra map[string]string) (*goquery.Document, error) {
	session, username := c.snapshotSession()
	form := map[string]string{
		"_csrf":        session.CSRF,
		"authorizedID": username,
		"x":            timezone.Now().UTC().Format(time.RFC1123),
	}
	for k, v := range extra {
		form[k] = v
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("cookie", session.Cookie).
		SetFormData(form).
		Post(endpoint)
	if err != nil && !errors.Is(err, resty.ErrAutoRedirectDisabled) {
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}

	if res.StatusCode() == 404 || isRedirect(res.StatusCode()) {
		// surfaced to the caller rather than retried here, so a
		// credentials problem cannot loop
		c.invalidateSession(ctx)
		return nil, fmt.Errorf("%w: %s", ErrSessionExpired, endpoint)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: status %d on %s", ErrTransport, res.StatusCode(), endpoint)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTransport, err)
	}
	return doc, nil
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

// the extractors skip malformed rows instead of failing; the count is
// surfaced here so brittleness shows up in traces and logs rather
// than vanishing
func reportSkipped(ctx context.Context, span trace.Span, what string, skipped int) {
	if skipped == 0 {
		return
	}
	span.SetAttributes(attribute.Int("skipped_rows", skipped))
	slog.WarnContext(ctx, "extractor skipped rows", "page", what, "rows", skipped)
}
