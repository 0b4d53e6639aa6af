package filestore

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/wansing/nexo/upload"
)

// implements upload.Folder
type Folder struct {
	store *Store
	key   string
}

func (f Folder) cachePattern(w, h int, filename string) string {
	return filepath.Join(f.store.CacheDir, fmt.Sprintf("%s_%d_%d_%s", f.key, w, h, filename))
}

func (f Folder) cachePatternAll(filename string) string {
	return filepath.Join(f.store.CacheDir, fmt.Sprintf("%s_*_*_%s", f.key, filename))
}

func (f Folder) uploadsFs() string {
	return filepath.Join(f.store.UploadDir, f.key)
}

func (f Folder) Delete(filename string) error {

	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(f.uploadsFs(), filename))
	if err != nil {
		return err
	}

	if err := f.removeCached(filename); err != nil {
		return err
	}

	_ = os.Remove(f.uploadsFs()) // try to remove folder, works only if the folder is empty
	return nil
}

// DeleteAll removes the folder and all cached variants of its files.
func (f Folder) DeleteAll() error {
	files, err := f.Files()
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := f.removeCached(file.Name()); err != nil {
			return err
		}
	}
	return os.RemoveAll(f.uploadsFs())
}

func (f Folder) removeCached(filename string) error {
	if f.store.CacheDir == "" {
		return nil
	}
	cacheds, err := filepath.Glob(f.cachePatternAll(filename))
	if err != nil {
		return err
	}
	for _, cached := range cacheds {
		if err := os.Remove(cached); err != nil {
			return err
		}
	}
	return nil
}

func (f Folder) Key() string {
	return f.key
}

func (f Folder) Files() ([]os.FileInfo, error) {
	entries, err := os.ReadDir(f.uploadsFs())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // assuming the folder was deleted because it was empty
		} else {
			return nil, err
		}
	}
	var files = make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	return files, nil
}

func (f Folder) HasFile(filename string) (bool, error) {
	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(filepath.Join(f.uploadsFs(), filename)); err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	} else {
		return false, err
	}
}

func (f Folder) Upload(filename string, src io.Reader) error {

	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return err
	}

	err = os.MkdirAll(f.uploadsFs(), 0755) // 755 is required if the webserver runs as a different user
	if err != nil {
		return err
	}

	has, err := f.HasFile(filename)
	if err != nil {
		return err
	}
	if has {
		return errors.New("file already exists")
	}

	dst, err := os.Create(filepath.Join(f.uploadsFs(), filename)) //  creates or truncates the named file, umask 0666
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// implements upload.Store
type Store struct {
	CacheDir   string // will contain just files
	UploadDir  string // will contain folders whose names are article uuids
	HMACSecret []byte
	Resizer    JPEGResizer // nil disables resizing
}

func (s *Store) Folder(key string) upload.Folder {
	return &Folder{
		store: s,
		key:   key,
	}
}

func (s *Store) HMAC(key string, filename string, w int, h int, ts int64) string {
	return upload.HMAC(s.HMACSecret, key, filename, w, h, ts)
}

func (s *Store) ServeHTTP(writer http.ResponseWriter, req *http.Request) {

	loc, err := upload.ParseUrl(req.URL) // req.URL seems to be always relative
	if err != nil {
		http.NotFound(writer, req)
		return
	}

	var location = s.Folder(loc.Key).(*Folder)

	original := filepath.Join(location.uploadsFs(), loc.Filename)

	// serve original file if resizing is not requested or not possible

	if !loc.Resize || s.Resizer == nil || s.CacheDir == "" {
		http.ServeFile(writer, req, original)
		return
	}

	// HMAC to avoid DoS attacks, deny access if timestamp is older than one day

	if !hmac.Equal([]byte(s.HMAC(loc.Key, loc.Filename, loc.W, loc.H, loc.TS)), loc.Sig) {
		http.NotFound(writer, req)
		return
	}

	if loc.TS+86400 < time.Now().Unix() {
		http.NotFound(writer, req)
		return
	}

	var w, h = loc.W, loc.H

	// requested filename reflects the parsed URL

	requested := location.cachePattern(w, h, loc.Filename)

	// create requested file (as a symlink to the canonical filename if required)

	if _, err := os.Stat(requested); os.IsNotExist(err) {

		// get original dimensions and assemble canonical filename (with real width and height)

		originalFile, err := os.Open(original)
		if err != nil {
			http.NotFound(writer, req)
			return
		}
		defer originalFile.Close()

		originalImage, _, err := image.DecodeConfig(originalFile)
		if err != nil {
			http.NotFound(writer, req)
			return
		}

		// URL parameters w and h are taken as max, no distortion allowed

		var scalingRatio float32 = 1.0

		if w != 0 {
			scalingRatio = float32(w) / float32(originalImage.Width)
		}

		if h != 0 {
			scalingRatioH := float32(h) / float32(originalImage.Height)
			if scalingRatio > scalingRatioH {
				scalingRatio = scalingRatioH
			}
		}

		if scalingRatio >= 1.0 {

			// don't scale up, symlink to original image instead

			err := os.Symlink(original, requested)
			if err != nil {
				http.NotFound(writer, req)
				return
			}

		} else {

			w = int(float32(originalImage.Width) * scalingRatio)
			h = int(float32(originalImage.Height) * scalingRatio)

			// w and h are always genuine (and especially non-zero) now

			var canonical = location.cachePattern(w, h, loc.Filename) // with real width and height

			// resize

			if _, err := os.Stat(canonical); os.IsNotExist(err) { // if canonical file doesn't exist
				if err := s.Resizer.Resize(original, canonical, w, h); err != nil {
					log.Printf("error resizing: %v", err)
				}
			}

			// symlink canonical filename to requested filename, if necessary

			if canonical != requested {
				err := os.Symlink(canonical, requested)
				if err != nil {
					http.NotFound(writer, req)
					return
				}
			}
		}
	}

	http.ServeFile(writer, req, requested)
}

type JPEGResizer interface {
	Name() string
	Resize(original, resized string, width, height int) error
}

type ImageMagick struct{}

func (ImageMagick) Name() string {
	return "ImageMagick"
}

func (ImageMagick) Resize(original, resized string, width, height int) error {
	resizeArg := fmt.Sprintf("%dx%d>", width, height)
	args := []string{original, "-resize", resizeArg, "-quality", "85", resized} // ">" means "Only Shrink Larger Images"
	return exec.Command("convert", args...).Run()
}

type Vips struct{}

func (Vips) Name() string {
	return "vips"
}

// JPEG Quality: https://github.com/libvips/libvips/issues/571#issuecomment-268031545
func (Vips) Resize(original, resized string, width, height int) error {
	args := []string{"thumbnail", original, resized + `[Q=85]`, strconv.Itoa(width), "--height", strconv.Itoa(height), "--size", "down"}
	return exec.Command("vips", args...).Run()
}

func FindResizer() (JPEGResizer, error) {
	if _, err := exec.LookPath("vips"); err == nil {
		return Vips{}, nil
	} else if _, err := exec.LookPath("convert"); err == nil {
		return ImageMagick{}, nil
	} else {
		return nil, errors.New("no JPEG resizer found")
	}
}
