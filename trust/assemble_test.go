package trust

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleURLEncodedKeepsOrderAndSkipsUnset(t *testing.T) {
	var shape = Shape{Method: http.MethodPost, Path: "/login", Encoding: URLEncoded}

	req, err := Assemble(shape, []FormField{
		Text("username", Some("alice b")),
		Text("unset", Opt[string]{}),
		Text("password", Some("s&cret")),
		Text("empty", Some("")),
	})
	require.NoError(t, err)

	assert.Equal(t, "username=alice+b&password=s%26cret&empty=", string(req.Body))
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/login", req.Path)
}

func TestAssembleBool(t *testing.T) {
	var shape = Shape{Method: http.MethodPost, Path: "/", Encoding: URLEncoded}

	req, err := Assemble(shape, []FormField{
		Bool("yes", Some(true)),
		Bool("no", Some(false)),
		Bool("unset", Opt[bool]{}),
	})
	require.NoError(t, err)
	assert.Equal(t, "yes=on&no=off", string(req.Body))
}

func readParts(t *testing.T, req *AssembledRequest) map[string]*multipart.Part {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)
	require.Equal(t, Boundary, params["boundary"])

	var parts = map[string]*multipart.Part{}
	var reader = multipart.NewReader(bytes.NewReader(req.Body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		parts[part.FormName()] = part
	}
	return parts
}

func TestAssembleMultipart(t *testing.T) {
	var shape = Shape{Method: http.MethodPost, Path: "/create", Encoding: Multipart, Require: []string{"image"}}

	req, err := Assemble(shape, []FormField{
		Text("title", Some("T")),
		Text("author", Opt[string]{}),
		Binary("image", Some(File{Name: "photo.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}})),
		Binary("audio", Some(File{Name: "a.bin", Data: []byte("x")})),
	})
	require.NoError(t, err)

	var parts = readParts(t, req)
	require.Len(t, parts, 3)
	assert.NotContains(t, parts, "author")

	assert.Equal(t, "photo.jpg", parts["image"].FileName())
	assert.Equal(t, "image/jpeg", parts["image"].Header.Get("Content-Type"))
	assert.Equal(t, "application/octet-stream", parts["audio"].Header.Get("Content-Type"))
}

func TestAssembleMultipartIsReproducible(t *testing.T) {
	var shape = Shape{Method: http.MethodPost, Path: "/create", Encoding: Multipart}
	var fields = []FormField{Text("title", Some("T")), Binary("image", Some(File{Name: "i.png", Data: []byte("png")}))}

	first, err := Assemble(shape, fields)
	require.NoError(t, err)
	second, err := Assemble(shape, fields)
	require.NoError(t, err)

	assert.Equal(t, first.Body, second.Body)
}

func TestAssembleMissingRequiredField(t *testing.T) {
	var shape = Shape{Method: http.MethodPost, Path: "/create", Encoding: Multipart, Require: []string{"image"}}

	_, err := Assemble(shape, []FormField{
		Text("title", Some("T")),
		Binary("image", Opt[File]{}),
	})

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "image", encErr.Field)
}

func TestAssembleRejectsBodyWithoutEncoding(t *testing.T) {
	_, err := Assemble(Shape{Method: http.MethodGet, Path: "/account", Encoding: NoBody}, []FormField{Text("x", Some("y"))})

	var encErr *EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestAssembleRejectsBinaryInURLEncoded(t *testing.T) {
	_, err := Assemble(Shape{Method: http.MethodPost, Path: "/", Encoding: URLEncoded}, []FormField{Binary("f", Some(File{Name: "f"}))})

	var encErr *EncodingError
	assert.ErrorAs(t, err, &encErr)
}
