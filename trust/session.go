package trust

import (
	"context"
	"net/http"
	"strings"
)

// Session is the credential of a logged-in user: the cookies from a login response or a bearer token.
// A Session never changes. The zero value is an empty session.
type Session struct {
	username string
	cookies  []*http.Cookie
	token    string
}

// MintedSession returns a session which authenticates with a bearer token.
func MintedSession(username, token string) *Session {
	return &Session{username: username, token: token}
}

func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	return s.username
}

func (s *Session) IsEmpty() bool {
	return s == nil || (len(s.cookies) == 0 && s.token == "")
}

// Attach returns a copy of the request with the credential added.
func (s *Session) Attach(r *AssembledRequest) (*AssembledRequest, error) {
	if s.IsEmpty() {
		return nil, ErrUnauthenticated
	}
	var attached = r.clone()
	if s.token != "" {
		attached.Header.Set("Authorization", "Bearer "+s.token)
	}
	if len(s.cookies) > 0 {
		var pairs = make([]string, 0, len(s.cookies))
		for _, c := range s.cookies {
			pairs = append(pairs, c.Name+"="+c.Value)
		}
		attached.Header.Set("Cookie", strings.Join(pairs, "; "))
	}
	return attached, nil
}

// LoginResult always carries the response and a session, which is empty if the login failed.
type LoginResult struct {
	Response *Response
	Session  *Session
	logger   Logger
}

// Authenticate sends the login form and collects the credential.
// A status other than 2xx or 3xx yields an *AuthError, a successful response without Set-Cookie yields ErrNoCredential.
func Authenticate(ctx context.Context, d *Dispatcher, shape Shape, data LoginData) (*LoginResult, error) {

	req, err := Assemble(shape, []FormField{
		Text("username", data.Username),
		Text("password", data.Password),
	})
	if err != nil {
		return nil, err
	}

	resp, err := d.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	var result = &LoginResult{
		Response: resp,
		Session:  &Session{},
	}

	if resp.Status < 200 || resp.Status >= 400 {
		return result, &AuthError{Username: data.Username.OrElse(""), Status: resp.Status}
	}

	var cookies []*http.Cookie
	for _, c := range resp.Cookies() {
		if c.Value != "" && c.MaxAge >= 0 { // skip deletions
			cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	if len(cookies) == 0 {
		return result, ErrNoCredential
	}

	result.Session = &Session{
		username: data.Username.OrElse(""),
		cookies:  cookies,
	}
	return result, nil
}
