package upload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// one Folder for one article
type Folder interface {
	Delete(filename string) error
	DeleteAll() error
	Key() string
	Files() ([]os.FileInfo, error)
	HasFile(filename string) (bool, error)
	Upload(filename string, src io.Reader) error
}

func CleanFilename(filename string) (string, error) {
	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)
	if strings.Contains(filename, "/") || strings.Contains(filename, `\`) {
		return "", errors.New("filename contains a slash")
	}
	if filename == "" || filename == "." || filename == ".." {
		return "", errors.New("filename is empty")
	}
	return filename, nil
}

// CleanKey accepts folder keys which are safe as a single path element, like uuids.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("folder key is empty")
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
			return "", errors.New("folder key contains invalid characters")
		}
	}
	return key, nil
}

// Creates an HMAC of a resized uploaded file. Store implementations can use it to prevent DoS attacks on image resizing.
func HMAC(secret []byte, key string, filename string, w int, h int, ts int64) string {

	buf := make([]byte, 24)
	binary.PutVarint(buf[0:], ts)
	binary.PutVarint(buf[8:], int64(w))
	binary.PutVarint(buf[16:], int64(h))
	buf = append(buf, []byte(key)...)
	buf = append(buf, '/')
	buf = append(buf, []byte(filename)...)

	hash := hmac.New(sha256.New, secret)
	hash.Write(buf)
	return base64.URLEncoding.EncodeToString(hash.Sum(nil))
}
