package trust

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func htmlResponse(status int, body string) *Response {
	var header = http.Header{}
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Add("Set-Cookie", "nexo_session=abc; Path=/; HttpOnly; Secure; SameSite=Strict")
	header.Set("Location", "/account")
	return &Response{Status: status, Header: header, Body: []byte(body)}
}

func TestVerifySuccess(t *testing.T) {
	var resp = htmlResponse(303, `<form><input name="author_name" value="Alice"><textarea name="text">Hello</textarea></form>`)

	var err = VerifyResponse(resp).
		Status(303).
		Location("/account").
		HeaderContains("Content-Type", "text/html").
		Cookie("nexo_session", "HttpOnly", "SameSite=Strict", "Path=/").
		BodyContains("Alice").
		BodyNotContains("Bob").
		FormValue("author_name", "Alice").
		FormValue("text", "Hello").
		Verify()

	assert.NoError(t, err)
}

func TestVerifyListsEveryMismatch(t *testing.T) {
	var resp = htmlResponse(200, `<input name="author_name" value="Alice">`)

	var err = VerifyResponse(resp).
		Status(303).
		Location("/admin_user").
		BodyContains("Welcome").
		FormValue("author_name", "Bob").
		FormValue("missing", "").
		Cookie("nexo_session", "Max-Age=60").
		Verify()

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Report, 6)

	var fields []string
	for _, m := range validationErr.Report {
		fields = append(fields, m.Field)
	}
	assert.Equal(t, []string{"status", "header Location", "body", "form value author_name", "form value missing", "cookie nexo_session"}, fields)
	assert.Equal(t, Mismatch{Field: "status", Expected: "303", Actual: "200"}, validationErr.Report[0])
	assert.True(t, strings.HasPrefix(err.Error(), "validation error: 6 incorrect"))
	assert.Contains(t, err.Error(), `status: "303", was "200"`)
}

func TestVerifyBodyEquals(t *testing.T) {
	var resp = &Response{Status: 200, Header: http.Header{}, Body: []byte("exact")}

	assert.NoError(t, VerifyResponse(resp).BodyEquals("exact").Verify())
	assert.Error(t, VerifyResponse(resp).BodyEquals("other").Verify())
}

func TestVerifyWithoutChecks(t *testing.T) {
	var resp = &Response{Status: 500, Header: http.Header{}}
	assert.NoError(t, VerifyResponse(resp).Verify())
}

const healthSchema = `{
	"type": "object",
	"required": ["status", "articles"],
	"properties": {
		"status": {"type": "string", "enum": ["ok"]},
		"articles": {"type": "integer", "minimum": 0}
	}
}`

func TestBodyMatchesSchema(t *testing.T) {
	var valid = &Response{Status: 200, Header: http.Header{}, Body: []byte(`{"status":"ok","articles":3}`)}
	assert.NoError(t, VerifyResponse(valid).BodyMatchesSchema(healthSchema).Verify())

	var invalid = &Response{Status: 200, Header: http.Header{}, Body: []byte(`{"status":"down"}`)}
	assert.Len(t, VerifyResponse(invalid).BodyMatchesSchema(healthSchema).Report(), 1)

	var notJSON = &Response{Status: 200, Header: http.Header{}, Body: []byte(`<html>`)}
	assert.Len(t, VerifyResponse(notJSON).BodyMatchesSchema(healthSchema).Report(), 1)

	assert.Len(t, VerifyResponse(valid).BodyMatchesSchema(`{not json`).Report(), 1)
}

func TestVerifyLogsMismatches(t *testing.T) {
	var logger = &CapturingLogger{}
	var v = newResponseVerifier(&Response{Status: 404, Header: http.Header{}}, logger, "account")

	assert.Error(t, v.Status(200).Verify())

	var output = logger.Output()
	require.Len(t, output, 2)
	assert.Contains(t, output[0], "account: 1 incorrect")
	assert.Contains(t, output[1], `status: "200", was "404"`)
}

func TestHeaderContainsReportsAllMissing(t *testing.T) {
	var resp = htmlResponse(200, "")

	var err = VerifyResponse(resp).
		HeaderContains("Content-Type", "text/html", "charset=latin1", "boundary").
		Verify()

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Len(t, validationErr.Report, 1)
	assert.Equal(t, Mismatch{
		Field:    "header Content-Type",
		Expected: `containing "charset=latin1", "boundary"`,
		Actual:   "text/html; charset=utf-8",
	}, validationErr.Report[0])
}
