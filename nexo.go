package main

import (
	"bytes"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wansing/nexo/backend"
	"github.com/wansing/nexo/core"
	"github.com/wansing/nexo/filestore"
	"github.com/wansing/nexo/sqldb"
	"github.com/wansing/nexo/sqldb/mysql"
	"github.com/wansing/nexo/sqldb/sqlite3"
	"github.com/wansing/nexo/util"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

func main() {

	// defaults from config/nexo.ini, if present

	var defaults = map[string]string{
		"base":          "",
		"cache":         "cache",
		"db":            "sqlite3:nexo.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared",
		"listen":        "127.0.0.1:8080",
		"secure-cookie": "false",
		"uploads":       "uploads",
	}

	if ini, err := util.Ini("config/nexo.ini"); err == nil {
		for key, value := range ini {
			defaults[key] = value
		}
		log.Println("read config/nexo.ini")
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("error reading config/nexo.ini: %v", err)
		return
	}

	var dbArg string // is in both FlagSets

	// default FlagSet

	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash."
	var base = flag.String("base", defaults["base"], "strip off this `prefix` from every HTTP request and prepended it to every link")
	var cacheDir = flag.String("cache", defaults["cache"], "store resized images in this `directory`")
	// MySQL: collation should be utf8mb4_unicode_ci
	flag.StringVar(&dbArg, "db", defaults["db"], "sql database url, see github.com/xo/dburl")
	var hmacKey = flag.String("hmac", defaults["hmac"], "use this secret HMAC `key` for serving resized images")
	var listenAddr = flag.String("listen", defaults["listen"], "serve HTTP content at this `ip:port`")
	var secureCookie = flag.Bool("secure-cookie", defaults["secure-cookie"] == "true", "set the Secure attribute on the session cookie")
	var tokenSecret = flag.String("token-secret", defaults["token-secret"], "sign bearer tokens with this `secret` (at least 32 bytes, random if empty)")
	var uploadDir = flag.String("uploads", defaults["uploads"], "store uploaded files in this `directory`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", defaults["db"], "sql database url, see github.com/xo/dburl") // copied from above
	var initInsert = initFlags.Bool("insert", false, "creates the given user")
	var initAuthor = initFlags.String("author", "", "specifies the author `name` of a new user")
	var initRole = initFlags.String("role", "editor", "specifies the `role` of a new user: editor or admin")
	var initToken = initFlags.Bool("token", false, "prints a bearer token for the given user")
	var initTokenTTL = initFlags.Duration("ttl", 24*time.Hour, "validity of the bearer token")
	var username = initFlags.String("user", "", "specifies a user `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// base

	*base = strings.Trim(*base, "/")
	if *base != "" {
		*base = "/" + *base
	}

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		log.Printf("unknown database backend: %s", dbURL.Driver)
		return
	}

	var uploads = &filestore.Store{
		CacheDir:   *cacheDir,
		UploadDir:  *uploadDir,
		HMACSecret: []byte(*hmacKey),
	}

	if resizer, err := filestore.FindResizer(); err == nil {
		uploads.Resizer = resizer
		log.Printf("resizing images with %s", resizer.Name())
	} else {
		log.Printf("not resizing images: %v", err)
	}

	if len(uploads.HMACSecret) == 0 {
		secret, err := util.RandomString32()
		if err != nil {
			log.Printf("error generating hmac key: %v", err)
			return
		}
		uploads.HMACSecret = []byte(secret)
	}

	if err := os.MkdirAll(uploads.CacheDir, 0755); err != nil {
		log.Printf("error creating cache directory: %v", err)
		return
	}

	db := &core.CoreDB{
		ArticleDB:    sqldb.NewArticleDB(sqlDB),
		UserDB:       sqldb.NewUserDB(sqlDB),
		Uploads:      uploads,
		SecureCookie: *secureCookie,
		TokenSecret:  *tokenSecret,
		SqlDB:        sqlDB,
	}

	if err = db.Init(sessionStore, *base); err != nil {
		log.Println(err) // log.Fatalln would not run deferred functions
		return
	}

	// init

	if initFlags.Parsed() {
		switch {
		case *initInsert && *username != "":
			insertUser(db, *username, *initAuthor, *initRole)
		case *initToken && *username != "":
			printToken(db, *username, *initTokenTTL)
		default:
			initFlags.Usage()
		}
		return
	}

	listen(db, *listenAddr, *base)
}

func insertUser(db *core.CoreDB, name, authorName, roleName string) {

	role, err := core.ParseRole(roleName)
	if err != nil {
		log.Println(err)
		return
	}

	fmt.Printf("password for user %s: ", name)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	if !bytes.Equal(pass1, pass2) {
		log.Printf("passwords don't match")
		return
	}

	if _, err := db.InsertUser(name, authorName, string(pass1), role, false); err != nil {
		log.Printf("error creating user %s: %v", name, err)
		return
	}

	log.Printf("created %s %s", role, name)
}

// The token is only valid as long as the token secret is the same, so run the server with -token-secret.
func printToken(db *core.CoreDB, name string, ttl time.Duration) {

	u, err := db.GetUserByName(core.NormalizeUsername(name))
	if err != nil {
		log.Printf("error getting user %s: %v", name, err)
		return
	}
	if u == nil {
		log.Printf("user %s not found", name)
		return
	}

	token, err := db.Tokens.Sign(u.Username, ttl)
	if err != nil {
		log.Printf("error signing token: %v", err)
		return
	}

	fmt.Println(token)
}

func listen(db *core.CoreDB, addr string, base string) {

	var mux = http.NewServeMux()
	var handler = backend.NewHandler(db, base)

	mux.Handle(base+"/", util.WithPrefix(base, handler))

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
