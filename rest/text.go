// Copyright 2021 The corehttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package rest

import (
	"fmt"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// charsetOf returns the charset parameter of a Content-Type value, or
// the empty string.
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.Trim(params["charset"], `"' `)
}

// decodeText decodes b using the named encoding. An empty name means
// UTF-8. UTF-8 text loses any leading byte order mark, and invalid
// sequences become U+FFFD.
func decodeText(name string, b []byte) (string, error) {
	if name == "" {
		return decodeUTF8(b)
	}
	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return "", fmt.Errorf("corehttp/rest: unknown encoding %q", name)
	}
	if canonical == "utf-8" {
		return decodeUTF8(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeUTF8(b []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
