package core

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/nexo/upload"
	"github.com/wansing/nexo/util"
)

var ErrNotFound = errors.New("not found")

type CoreDB struct {
	ArticleDB
	UserDB
	SessionManager *scs.SessionManager
	Tokens         *TokenSigner
	Uploads        upload.Store

	SecureCookie bool    // exported because main sets it
	TokenSecret  string  // exported because main sets it
	SqlDB        *sql.DB // for the health check
	Started      time.Time
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string) error {

	if c.TokenSecret == "" {
		var err error
		c.TokenSecret, err = util.RandomString32()
		if err == nil {
			log.Println("generating random token secret")
		} else {
			return fmt.Errorf("error generating random token secret: %w", err)
		}
	}

	c.Tokens = &TokenSigner{
		Secret: []byte(c.TokenSecret),
		Issuer: "nexo",
	}

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Name = "nexo_session"
	c.SessionManager.Cookie.HttpOnly = true
	c.SessionManager.Cookie.Path = cookiePath + "/"           // 'The default value is "/". Passing the empty string "" will result in it being set to the path that the cookie was issued from.'
	c.SessionManager.Cookie.Persist = false                   // Don't store cookie across browser sessions.
	c.SessionManager.Cookie.SameSite = http.SameSiteStrictMode // editors only come from our own forms
	c.SessionManager.Cookie.Secure = c.SecureCookie           // false when running on localhost or behind a http proxy
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour

	if c.Started.IsZero() {
		c.Started = time.Now()
	}

	return nil
}
