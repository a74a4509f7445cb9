// Package captive logs into the hostel Wi-Fi's captive portal, whose
// login form requires a hidden per-page "magic" token.
package captive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"vtop-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/captive")

var (
	// the login page came back without its hidden token; there is
	// nothing to authenticate with
	ErrNoMagic          = errors.New("captive portal page carries no magic token")
	ErrWrongCredentials = errors.New("captive portal rejected the credentials")
	ErrSessionLimit     = errors.New("captive portal session limit reached")
)

type Client struct {
	BaseUrl string
	Http    *resty.Client
}

func NewClient(baseUrl string) *Client {
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 15)
	telemetry.InstrumentResty(client, "scrapers/captive/http")
	return &Client{BaseUrl: baseUrl, Http: client}
}

// ExtractMagic pulls the hidden token out of the login form. The
// second return is false when the input is missing entirely, which
// callers must treat as "cannot authenticate", not as an empty token.
func ExtractMagic(doc *goquery.Document) (string, bool) {
	input := doc.Find(`input[name="magic"]`).First()
	if input.Length() == 0 {
		return "", false
	}
	return input.AttrOr("value", ""), true
}

// Login fetches the portal page, recovers the magic token and submits
// the login form.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("fetch portal page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("parse portal page: %w", err)
	}

	magic, ok := ExtractMagic(doc)
	if !ok {
		span.SetStatus(codes.Error, ErrNoMagic.Error())
		return ErrNoMagic
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"magic":       magic,
			"username":    username,
			"password":    password,
			"serviceName": "ProntoAuthentication",
		}).
		Post("/userlogin")
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("submit login: %w", err)
	}

	body := strings.ToLower(string(res.Body()))
	switch {
	case strings.Contains(body, "successful"):
		return nil
	case strings.Contains(body, "session limit"):
		span.SetStatus(codes.Error, ErrSessionLimit.Error())
		return ErrSessionLimit
	default:
		span.SetStatus(codes.Error, ErrWrongCredentials.Error())
		return ErrWrongCredentials
	}
}
