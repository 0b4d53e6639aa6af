package trust

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// Boundary is the multipart boundary of every assembled request, so request bodies are reproducible.
const Boundary = "---------------------------123456789012345678901234567"

type Encoding int

const (
	NoBody Encoding = iota
	URLEncoded
	Multipart
)

func (e Encoding) String() string {
	switch e {
	case NoBody:
		return "none"
	case URLEncoded:
		return "urlencoded"
	case Multipart:
		return "multipart"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Shape is the fixed part of a flow request.
type Shape struct {
	Method   string
	Path     string
	Encoding Encoding
	Require  []string // names of fields which must be set
}

// WithPath returns a copy with another path, e.g. with a path parameter filled in.
func (s Shape) WithPath(path string) Shape {
	s.Path = path
	return s
}

type fieldKind int

const (
	textField fieldKind = iota
	binaryField
)

// FormField is one named field of a request body. An unset field is not sent.
type FormField struct {
	name string
	kind fieldKind
	text Opt[string]
	file Opt[File]
}

func (f FormField) Name() string {
	return f.name
}

func (f FormField) IsSet() bool {
	if f.kind == binaryField {
		return f.file.IsSet()
	}
	return f.text.IsSet()
}

func Text(name string, value Opt[string]) FormField {
	return FormField{name: name, kind: textField, text: value}
}

// Bool sends true as "on" and false as "off", like an HTML checkbox with a hidden fallback.
func Bool(name string, value Opt[bool]) FormField {
	var text Opt[string]
	if b, ok := value.Get(); ok {
		if b {
			text = Some("on")
		} else {
			text = Some("off")
		}
	}
	return FormField{name: name, kind: textField, text: text}
}

// List sends the values joined by commas.
func List(name string, value Opt[[]string]) FormField {
	var text Opt[string]
	if values, ok := value.Get(); ok {
		text = Some(strings.Join(values, ","))
	}
	return FormField{name: name, kind: textField, text: text}
}

func Binary(name string, value Opt[File]) FormField {
	return FormField{name: name, kind: binaryField, file: value}
}

// AssembledRequest is immutable. Session.Attach returns a modified copy.
type AssembledRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func (r *AssembledRequest) clone() *AssembledRequest {
	return &AssembledRequest{
		Method: r.Method,
		Path:   r.Path,
		Header: r.Header.Clone(),
		Body:   r.Body,
	}
}

// Assemble encodes the set fields in the given order.
func Assemble(shape Shape, fields []FormField) (*AssembledRequest, error) {

	for _, required := range shape.Require {
		var found = false
		for _, f := range fields {
			if f.name == required && f.IsSet() {
				found = true
				break
			}
		}
		if !found {
			return nil, &EncodingError{Field: required, Reason: "required field is not set"}
		}
	}

	var req = &AssembledRequest{
		Method: shape.Method,
		Path:   shape.Path,
		Header: http.Header{},
	}

	switch shape.Encoding {
	case NoBody:
		for _, f := range fields {
			if f.IsSet() {
				return nil, &EncodingError{Field: f.name, Reason: "request has no body"}
			}
		}
	case URLEncoded:
		body, err := encodeURL(fields)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Body = body
	case Multipart:
		body, err := encodeMultipart(fields)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "multipart/form-data; boundary="+Boundary)
		req.Body = body
	default:
		return nil, &EncodingError{Reason: "unknown encoding " + shape.Encoding.String()}
	}

	return req, nil
}

// url.Values.Encode sorts by key, so we keep the declaration order ourselves
func encodeURL(fields []FormField) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range fields {
		if !f.IsSet() {
			continue
		}
		if f.kind == binaryField {
			return nil, &EncodingError{Field: f.name, Reason: "binary field in urlencoded body"}
		}
		if buf.Len() > 0 {
			buf.WriteByte('&')
		}
		value, _ := f.text.Get()
		buf.WriteString(url.QueryEscape(f.name))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(value))
	}
	return buf.Bytes(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(fields []FormField) ([]byte, error) {

	var buf bytes.Buffer
	var w = multipart.NewWriter(&buf)
	if err := w.SetBoundary(Boundary); err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}

	for _, f := range fields {
		if !f.IsSet() {
			continue
		}
		switch f.kind {
		case textField:
			value, _ := f.text.Get()
			if err := w.WriteField(f.name, value); err != nil {
				return nil, &EncodingError{Field: f.name, Reason: err.Error()}
			}
		case binaryField:
			file, _ := f.file.Get()
			if file.Name == "" {
				return nil, &EncodingError{Field: f.name, Reason: "file has no name"}
			}
			var contentType = file.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			var h = make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(f.name), quoteEscaper.Replace(file.Name)))
			h.Set("Content-Type", contentType)
			part, err := w.CreatePart(h)
			if err != nil {
				return nil, &EncodingError{Field: f.name, Reason: err.Error()}
			}
			if _, err := part.Write(file.Data); err != nil {
				return nil, &EncodingError{Field: f.name, Reason: err.Error()}
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}
	return buf.Bytes(), nil
}
