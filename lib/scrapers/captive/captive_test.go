package captive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form method="post" action="/userlogin">
<input type="hidden" name="magic" value="0a1b2c3d4e5f" />
<input type="text" name="username" />
<input type="password" name="password" />
</form>
</body></html>`

func TestExtractMagic(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(loginPage))
	require.NoError(t, err)

	magic, ok := ExtractMagic(doc)
	require.True(t, ok)
	require.Equal(t, "0a1b2c3d4e5f", magic)
}

func TestExtractMagicMissing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><form><input name="username" /></form></body></html>`,
	))
	require.NoError(t, err)

	_, ok := ExtractMagic(doc)
	require.False(t, ok)
}

func portalServer(t *testing.T, reply string) (*Client, *map[string]string) {
	submitted := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, loginPage)
		case "/userlogin":
			require.NoError(t, r.ParseForm())
			for k := range r.PostForm {
				submitted[k] = r.PostForm.Get(k)
			}
			fmt.Fprint(w, reply)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return NewClient(server.URL), &submitted
}

func TestLogin(t *testing.T) {
	client, submitted := portalServer(t, "You are signed in. Login Successful.")

	err := client.Login(context.Background(), "22BCE0001", "hunter2")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"magic":       "0a1b2c3d4e5f",
		"username":    "22BCE0001",
		"password":    "hunter2",
		"serviceName": "ProntoAuthentication",
	}, *submitted)
}

func TestLoginSessionLimit(t *testing.T) {
	client, _ := portalServer(t, "Sorry, you have reached your Session Limit.")

	err := client.Login(context.Background(), "22BCE0001", "hunter2")
	require.ErrorIs(t, err, ErrSessionLimit)
}

func TestLoginWrongCredentials(t *testing.T) {
	client, _ := portalServer(t, "Firewall authentication failed. Please try again.")

	err := client.Login(context.Background(), "22BCE0001", "nope")
	require.ErrorIs(t, err, ErrWrongCredentials)
}

func TestLoginNoMagic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>portal temporarily unavailable</body></html>")
	}))
	t.Cleanup(server.Close)

	err := NewClient(server.URL).Login(context.Background(), "22BCE0001", "hunter2")
	require.ErrorIs(t, err, ErrNoMagic)
}
