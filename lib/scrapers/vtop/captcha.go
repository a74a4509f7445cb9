package vtop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"vtop-backend/lib/telemetry"
	"vtop-backend/lib/timezone"

	"github.com/go-resty/resty/v2"
)

// errSolverHandoff marks the transient csrf/captcha rejections the
// solver backend emits when its own portal hand-off goes stale. Only
// these are worth retrying; everything else is a real login failure.
var errSolverHandoff = errors.New("solver handoff rejected")

// SolverClient talks to the remote captcha-solving backend, which
// performs the actual portal login and hands back a live session.
type SolverClient struct {
	http *resty.Client
}

func NewSolverClient(baseUrl string) *SolverClient {
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "scrapers/vtop/solver")
	return &SolverClient{http: client}
}

type solverCookie struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type solverResponse struct {
	CSRF    string         `json:"csrf"`
	Cookies []solverCookie `json:"cookies"`
	Error   string         `json:"error"`
}

func (s *SolverClient) Solve(ctx context.Context, username, password string) (Session, error) {
	res, err := s.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(map[string]string{
			"username": username,
			"pwd":      password,
		}).
		Post("/api/login/autocaptcha")
	if err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrTransport, err)
	}

	var body solverResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return Session{}, fmt.Errorf("%w: solver sent unparseable body: %s", ErrTransport, err)
	}

	if res.StatusCode() != 200 {
		msg := strings.ToLower(body.Error)
		if strings.Contains(msg, "csrf") || strings.Contains(msg, "captcha") {
			return Session{}, fmt.Errorf("%w: %s", errSolverHandoff, body.Error)
		}
		return Session{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, body.Error)
	}

	cookie := strings.Builder{}
	for i, c := range body.Cookies {
		if i > 0 {
			cookie.WriteString("; ")
		}
		cookie.WriteString(c.Key)
		cookie.WriteString("=")
		cookie.WriteString(c.Value)
	}

	return Session{
		Cookie:    cookie.String(),
		CSRF:      body.CSRF,
		CreatedAt: timezone.Now(),
	}, nil
}
