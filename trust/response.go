package trust

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/wansing/nexo/util"
)

type check func(r *Response) *Mismatch

// ResponseVerifier collects checks on one response. The checks run in order when Verify is called.
type ResponseVerifier struct {
	response *Response
	logger   Logger
	subject  string

	mu     sync.Mutex
	checks []check
}

func newResponseVerifier(response *Response, logger Logger, subject string) *ResponseVerifier {
	return &ResponseVerifier{
		response: response,
		logger:   logger,
		subject:  subject,
	}
}

// VerifyResponse returns a ResponseVerifier which does not log.
func VerifyResponse(response *Response) *ResponseVerifier {
	return newResponseVerifier(response, NullLogger(), "response")
}

func (v *ResponseVerifier) add(c check) *ResponseVerifier {
	v.mu.Lock()
	v.checks = append(v.checks, c)
	v.mu.Unlock()
	return v
}

// Response returns the verified response, e.g. for custom assertions.
func (v *ResponseVerifier) Response() *Response {
	return v.response
}

func (v *ResponseVerifier) Status(expected int) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		if r.Status == expected {
			return nil
		}
		return &Mismatch{Field: "status", Expected: strconv.Itoa(expected), Actual: strconv.Itoa(r.Status)}
	})
}

func (v *ResponseVerifier) Header(name, expected string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		if actual := r.Header.Get(name); actual != expected {
			return &Mismatch{Field: "header " + http.CanonicalHeaderKey(name), Expected: expected, Actual: actual}
		}
		return nil
	})
}

// HeaderContains checks that the header contains every substring. All missing substrings are reported in one mismatch.
func (v *ResponseVerifier) HeaderContains(name string, substrs ...string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		var actual = r.Header.Get(name)
		var missing []string
		for _, substr := range substrs {
			if !strings.Contains(actual, substr) {
				missing = append(missing, strconv.Quote(substr))
			}
		}
		if len(missing) > 0 {
			return &Mismatch{Field: "header " + http.CanonicalHeaderKey(name), Expected: "containing " + strings.Join(missing, ", "), Actual: actual}
		}
		return nil
	})
}

func (v *ResponseVerifier) Location(expected string) *ResponseVerifier {
	return v.Header("Location", expected)
}

// Cookie checks that a Set-Cookie header of the named cookie contains all given attributes, like "HttpOnly" or "SameSite=Strict".
func (v *ResponseVerifier) Cookie(name string, attributes ...string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		var field = "cookie " + name
		var expected = strings.Join(append([]string{name + "=…"}, attributes...), "; ")
		var seen []string
		for _, line := range r.Header.Values("Set-Cookie") {
			if !strings.HasPrefix(line, name+"=") {
				continue
			}
			seen = append(seen, line)
			if hasAttributes(line, attributes) {
				return nil
			}
		}
		return &Mismatch{Field: field, Expected: expected, Actual: strings.Join(seen, " | ")}
	})
}

func hasAttributes(line string, attributes []string) bool {
	var present = map[string]bool{}
	for _, part := range strings.Split(line, ";") {
		present[strings.ToLower(strings.TrimSpace(part))] = true
	}
	for _, a := range attributes {
		if !present[strings.ToLower(strings.TrimSpace(a))] {
			return false
		}
	}
	return true
}

func (v *ResponseVerifier) BodyContains(substr string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		if !bytes.Contains(r.Body, []byte(substr)) {
			return &Mismatch{Field: "body", Expected: "containing " + substr, Actual: string(r.Body)}
		}
		return nil
	})
}

func (v *ResponseVerifier) BodyNotContains(substr string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		if bytes.Contains(r.Body, []byte(substr)) {
			return &Mismatch{Field: "body", Expected: "not containing " + substr, Actual: string(r.Body)}
		}
		return nil
	})
}

func (v *ResponseVerifier) BodyEquals(expected string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		if string(r.Body) != expected {
			return &Mismatch{Field: "body", Expected: expected, Actual: string(r.Body)}
		}
		return nil
	})
}

// FormValue checks the value of a named input, textarea or select element in the HTML body.
func (v *ResponseVerifier) FormValue(name, expected string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		var field = "form value " + name
		doc, err := util.ParseDocument(bytes.NewReader(r.Body))
		if err != nil {
			return &Mismatch{Field: field, Expected: expected, Actual: "unparsable HTML: " + err.Error()}
		}
		actual, ok := util.FormValue(doc, name)
		if !ok {
			return &Mismatch{Field: field, Expected: expected, Actual: "<no such element>"}
		}
		if actual != expected {
			return &Mismatch{Field: field, Expected: expected, Actual: actual}
		}
		return nil
	})
}

// BodyMatchesSchema validates the JSON body against a JSON schema document.
// An invalid schema is reported as a mismatch, not as a panic.
func (v *ResponseVerifier) BodyMatchesSchema(schema string) *ResponseVerifier {
	return v.add(func(r *Response) *Mismatch {
		compiled, err := jsonschema.CompileString("response.schema.json", schema)
		if err != nil {
			return &Mismatch{Field: "body schema", Expected: "valid schema", Actual: err.Error()}
		}
		var payload any
		if err := json.Unmarshal(r.Body, &payload); err != nil {
			return &Mismatch{Field: "body schema", Expected: "JSON", Actual: fmt.Sprintf("%v: %s", err, r.Body)}
		}
		if err := compiled.Validate(payload); err != nil {
			return &Mismatch{Field: "body schema", Expected: "matching schema", Actual: err.Error()}
		}
		return nil
	})
}

// Report runs all checks in order.
func (v *ResponseVerifier) Report() Report {
	v.mu.Lock()
	var checks = append([]check(nil), v.checks...)
	v.mu.Unlock()

	var report Report
	for _, c := range checks {
		if m := c(v.response); m != nil {
			report = append(report, *m)
		}
	}
	return report
}

// Verify runs all checks and returns a *ValidationError listing every mismatch, or nil.
func (v *ResponseVerifier) Verify() error {
	var report = v.Report()
	report.Log(v.logger, v.subject)
	return report.Err()
}
