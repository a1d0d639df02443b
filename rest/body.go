// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const badContentTypeMsg = "corehttp/rest: invalid content type (for content use " +
	"string, []byte, [][]byte or io.Reader)"

// A BodyKind identifies how a request body was specified.
type BodyKind int

const (
	// NoBody means the request has an empty body.
	NoBody BodyKind = iota
	// BytesBody is raw content of known length.
	BytesBody
	// StreamBody is raw content of unknown length, sent chunked.
	StreamBody
	// JSONBody is a serialized JSON value.
	JSONBody
	// FormBody is URL-encoded form data.
	FormBody
	// MultipartBody is multipart/form-data, optionally with form fields.
	MultipartBody
)

var bodyKindNames = []string{
	"NoBody",
	"BytesBody",
	"StreamBody",
	"JSONBody",
	"FormBody",
	"MultipartBody",
}

// String returns the name of the body kind.
func (k BodyKind) String() string {
	return bodyKindNames[int(k)]
}

// A File is one part of a multipart file upload.
type File struct {
	// Filename is the file name sent in the part's Content-Disposition.
	// If empty, the field name is used.
	Filename string

	// Content is the file content. It may be a string, []byte or
	// io.Reader. Readers are read to the end when the request is
	// constructed.
	Content interface{}

	// ContentType is the part content type. If empty,
	// application/octet-stream is used.
	ContentType string
}

// Files maps multipart field names to files. Parts are written in
// field name order.
type Files map[string]File

type body struct {
	kind   BodyKind
	data   []byte
	chunks [][]byte
	stream io.Reader
}

func (b *body) rewindable() bool {
	return b.kind != StreamBody || b.stream == nil
}

func (b *body) copy() body {
	b2 := body{kind: b.kind, stream: b.stream}
	if b.data != nil {
		b2.data = append([]byte(nil), b.data...)
	}
	if b.chunks != nil {
		b2.chunks = make([][]byte, len(b.chunks))
		for i := range b.chunks {
			b2.chunks[i] = append([]byte(nil), b.chunks[i]...)
		}
	}
	return b2
}

type defaultHeader struct {
	name  string
	value string
}

// resolveBody applies the body resolution rules and returns the body
// together with the default headers it implies.
func resolveBody(opts *RequestOptions) (body, []defaultHeader, error) {
	content := opts.Content
	if opts.Data != nil && !isMapping(opts.Data) {
		content = opts.Data
	}
	if content != nil {
		return contentBody(content)
	}
	if opts.JSON != nil {
		return jsonBody(opts.JSON)
	}
	var form url.Values
	if opts.Data != nil {
		var err error
		form, err = toValues(opts.Data)
		if err != nil {
			return body{}, nil, err
		}
	}
	if len(opts.Files) > 0 {
		return multipartBody(opts.Files, form)
	}
	if len(form) > 0 {
		return formBody(form)
	}
	return body{kind: NoBody}, nil, nil
}

func contentBody(content interface{}) (body, []defaultHeader, error) {
	switch x := content.(type) {
	case string:
		return lengthBody([]byte(x))
	case []byte:
		return lengthBody(x)
	case [][]byte:
		return body{kind: StreamBody, chunks: x}, chunkedHeaders(), nil
	case lener:
		return body{kind: StreamBody, stream: x}, []defaultHeader{
			{"Content-Length", strconv.Itoa(x.Len())},
		}, nil
	case io.Reader:
		return body{kind: StreamBody, stream: x}, chunkedHeaders(), nil
	default:
		return body{}, nil, errors.New(badContentTypeMsg)
	}
}

type lener interface {
	io.Reader
	Len() int
}

func lengthBody(b []byte) (body, []defaultHeader, error) {
	return body{kind: BytesBody, data: b}, []defaultHeader{
		{"Content-Length", strconv.Itoa(len(b))},
	}, nil
}

func chunkedHeaders() []defaultHeader {
	return []defaultHeader{{"Transfer-Encoding", "chunked"}}
}

func jsonBody(v interface{}) (body, []defaultHeader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return body{}, nil, fmt.Errorf("corehttp/rest: invalid JSON body: %w", err)
	}
	return body{kind: JSONBody, data: b}, []defaultHeader{
		{"Content-Type", "application/json"},
		{"Content-Length", strconv.Itoa(len(b))},
	}, nil
}

func formBody(form url.Values) (body, []defaultHeader, error) {
	b := []byte(form.Encode())
	return body{kind: FormBody, data: b}, []defaultHeader{
		{"Content-Type", "application/x-www-form-urlencoded"},
		{"Content-Length", strconv.Itoa(len(b))},
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartBody(files Files, form url.Values) (body, []defaultHeader, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := make([]string, 0, len(form))
	for name := range form {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		for _, v := range form[name] {
			if err := w.WriteField(name, v); err != nil {
				return body{}, nil, err
			}
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := files[name]
		b, err := fileBytes(f.Content)
		if err != nil {
			return body{}, nil, err
		}
		filename := f.Filename
		if filename == "" {
			filename = name
		}
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(name), quoteEscaper.Replace(filename)))
		hdr.Set("Content-Type", ct)
		part, err := w.CreatePart(hdr)
		if err != nil {
			return body{}, nil, err
		}
		if _, err = part.Write(b); err != nil {
			return body{}, nil, err
		}
	}
	if err := w.Close(); err != nil {
		return body{}, nil, err
	}

	return body{kind: MultipartBody, data: buf.Bytes()}, []defaultHeader{
		{"Content-Type", w.FormDataContentType()},
		{"Content-Length", strconv.Itoa(buf.Len())},
	}, nil
}

// fileBytes reads a multipart file content value into memory.
func fileBytes(content interface{}) ([]byte, error) {
	switch x := content.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := ioutil.ReadAll(x)
		if err != nil {
			return nil, err
		}
		if err = x.Close(); err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return fileBytes(ioutil.NopCloser(x))
	default:
		return nil, errors.New("corehttp/rest: invalid file content type (use string, []byte or io.Reader)")
	}
}

func isMapping(data interface{}) bool {
	switch data.(type) {
	case map[string]string, map[string][]string, url.Values:
		return true
	default:
		return false
	}
}

func toValues(data interface{}) (url.Values, error) {
	switch x := data.(type) {
	case url.Values:
		return x, nil
	case map[string][]string:
		return url.Values(x), nil
	case map[string]string:
		v := make(url.Values, len(x))
		for k, s := range x {
			v.Set(k, s)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("corehttp/rest: invalid data type %T", data)
	}
}
