package upload

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
)

type Store interface {
	Folder(key string) Folder
	HMAC(key string, filename string, w int, h int, ts int64) string
	ServeHTTP(writer http.ResponseWriter, req *http.Request) // implementations will use HMAC and ParseUrl
}

// ImageWidths are the widths of the resized variants which templates link to.
var ImageWidths = []int{50, 288, 440, 820}

// A Location is a parsed upload URL.
type Location struct {
	Key      string
	Filename string
	Resize   bool
	W, H     int
	TS       int64
	Sig      []byte
}

// ParseUrl parses an url like "0190.../foo.jpg" or "0190.../foo.jpg?w=400&h=200&ts=...&sig=...".
func ParseUrl(u *url.URL) (*Location, error) {

	dir, filename := path.Split(u.Path)

	// strip slashes from dir

	dir = strings.Trim(dir, "/")
	if strings.Contains(dir, "/") {
		return nil, errors.New("nested upload path")
	}

	key, err := CleanKey(dir)
	if err != nil {
		return nil, err
	}

	filename, err = CleanFilename(filename)
	if err != nil {
		return nil, err
	}

	var loc = &Location{
		Key:      key,
		Filename: filename,
	}

	// search for query keys w and h

	var lower = strings.ToLower(filename)
	if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		loc.W, _ = strconv.Atoi(u.Query().Get("w"))
		loc.H, _ = strconv.Atoi(u.Query().Get("h"))
		loc.Resize = loc.W > 0 || loc.H > 0
	}

	// other parameters

	loc.TS, _ = strconv.ParseInt(u.Query().Get("ts"), 10, 64)
	loc.Sig = []byte(u.Query().Get("sig"))

	return loc, nil
}

// SignedUrl returns the relative URL of a resized variant.
func SignedUrl(store Store, key, filename string, w, h int, ts int64) string {
	var q = url.Values{}
	q.Set("w", strconv.Itoa(w))
	q.Set("h", strconv.Itoa(h))
	q.Set("ts", strconv.FormatInt(ts, 10))
	q.Set("sig", store.HMAC(key, filename, w, h, ts))
	return key + "/" + url.PathEscape(filename) + "?" + q.Encode()
}
