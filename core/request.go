package core

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/text/language"
)

type Notification struct {
	Message string
	Style   string
}

func init() {
	gob.Register([]Notification{}) // required for storing Notifications in a session
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.Czech, // default
	language.AmericanEnglish,
})

var monthNamesCs = strings.NewReplacer(
	"January", "ledna",
	"February", "února",
	"March", "března",
	"April", "dubna",
	"May", "května",
	"June", "června",
	"July", "července",
	"August", "srpna",
	"September", "září",
	"October", "října",
	"November", "listopadu",
	"December", "prosince",
)

// A Request is created by CoreDB.NewRequest.
type Request struct {
	db   *CoreDB // unexported, so it can't be accessed in templates
	User *User

	// http
	writer  http.ResponseWriter
	request *http.Request

	// robustness
	statusWritten bool
	redirected    bool

	// caching
	language language.Tag
}

// NewRequest creates a Request with the given http.ResponseWriter and http.Request.
// If a user is logged in, either by session or by bearer token, it sets Request.User.
func (c *CoreDB) NewRequest(w http.ResponseWriter, httpreq *http.Request) *Request {

	var req = &Request{
		db:      c,
		writer:  w,
		request: httpreq,
	}

	req.language, _ = language.MatchStrings(langMatcher, httpreq.Header.Get("Accept-Language"))

	var username = c.SessionManager.GetString(httpreq.Context(), "username")

	if username == "" && c.Tokens != nil {
		if bearer := strings.TrimPrefix(httpreq.Header.Get("Authorization"), "Bearer "); bearer != httpreq.Header.Get("Authorization") {
			username, _ = c.Tokens.Verify(bearer) // invalid tokens are like no token
		}
	}

	if username != "" {
		u, err := c.UserDB.GetUserByName(username)
		if u != nil && err == nil {
			req.User = u
		}
		// ignore errors
	}

	return req
}

// Danger adds a "danger" notification to the session.
func (req *Request) Danger(err error) {
	req.addNotification(err.Error(), "danger")
}

// Success adds a "success" notification to the session.
func (req *Request) Success(format string, args ...interface{}) {
	req.addNotification(fmt.Sprintf(format, args...), "success")
}

// style should be a bootstrap alert style without the leading "alert-"
func (req *Request) addNotification(message, style string) {
	notifications, _ := req.db.SessionManager.Get(req.request.Context(), "notifications").([]Notification)
	notifications = append(notifications, Notification{message, style})
	req.db.SessionManager.Put(req.request.Context(), "notifications", notifications)
}

// RenderNotifications removes all notifications from the session
// and renders them into an HTML string.
// If a redirect has been written, it does nothing, so the notifications survive until the next page.
func (req *Request) RenderNotifications() template.HTML {
	var r string
	if !req.redirected {
		notifications, _ := req.db.SessionManager.Pop(req.request.Context(), "notifications").([]Notification)
		for _, n := range notifications {
			r += `<div class="alert alert-` + n.Style + `" role="alert">` + template.HTMLEscapeString(n.Message) + `</div>`
		}
	}
	return template.HTML(r)
}

// Cleanup destroys the session (which means re-setting the cookie with zero lifetime) if the session has been modified and is empty now.
func (req *Request) Cleanup() {
	sessMan := req.db.SessionManager
	if sessMan.Status(req.request.Context()) == scs.Modified && len(sessMan.Keys(req.request.Context())) == 0 {
		_ = sessMan.Destroy(req.request.Context())
	}
}

// SeeOther sets the HTTP header to redirect to an URL.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if req.statusWritten {
		return
	}
	var url = fmt.Sprintf(format, args...)
	http.Redirect(req.writer, req.request, url, http.StatusSeeOther)
	req.statusWritten = true
	req.redirected = true
}

// WriteStatus writes a bare status code, unless a status has been written before.
func (req *Request) WriteStatus(code int) {
	if req.statusWritten {
		return
	}
	req.writer.WriteHeader(code)
	req.statusWritten = true
}

// Login tries to log in a user. On success, the username is stored in the session.
// The session token is renewed to prevent session fixation.
func (req *Request) Login(username string, enteredPass string) error {
	u, err := req.db.LoginUser(username, enteredPass)
	if err != nil {
		return err // is ErrAuth if username or enteredPass is wrong
	}
	if err := req.db.SessionManager.RenewToken(req.request.Context()); err != nil {
		return err
	}
	req.User = u
	req.db.SessionManager.Put(req.request.Context(), "username", u.Username)
	return nil
}

func (req *Request) LoggedIn() bool {
	return req.User != nil
}

func (req *Request) IsAdmin() bool {
	return req.User.IsAdmin()
}

// Logout removes the username from the session and calls req.Cleanup().
func (req *Request) Logout() {
	if req.LoggedIn() {
		req.db.SessionManager.Remove(req.request.Context(), "username")
	}
	req.Cleanup()
}

func (req *Request) FormatDateTime(t time.Time) string {
	b, _ := req.language.Base()
	switch b.String() {
	case "cs":
		return monthNamesCs.Replace(t.Format("2. January 2006 15:04"))
	default:
		return t.Format("January 2, 2006 3:04 PM")
	}
}
