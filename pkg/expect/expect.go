// Package expect validates fully read API responses: status codes, JSON
// decoding, JSON Schema conformance, and field-level assertions. It never
// performs I/O and never mutates the response; every failure is a distinct
// typed error so callers can attribute it precisely.
package expect

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/probehq/apiprobe/pkg/apiclient"
)

const maxExcerptBytes = 512

// StatusCode asserts the response carries exactly the expected status.
func StatusCode(resp *apiclient.Response, expected int) error {
	return StatusIn(resp, expected)
}

// StatusIn asserts the status is one of the accepted codes. Delete
// endpoints answer 200 or 204 depending on the backend.
func StatusIn(resp *apiclient.Response, accepted ...int) error {
	if resp == nil {
		return &StatusError{Expected: accepted, Excerpt: "<no response>"}
	}
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}
	return &StatusError{
		Expected: accepted,
		Actual:   resp.StatusCode,
		Method:   resp.Method,
		URL:      resp.URL,
		Excerpt:  bodyExcerpt(resp.Body),
	}
}

// JSON decodes the response body preserving number precision. A malformed
// body yields a *ParseError carrying a body excerpt and, when the body is
// an HTML error page, its title.
func JSON(resp *apiclient.Response) (interface{}, error) {
	if resp == nil {
		return nil, &ParseError{Excerpt: "<no response>", cause: errors.New("response is nil")}
	}
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{
			Excerpt:   bodyExcerpt(resp.Body),
			HTMLTitle: htmlTitle(resp.Body),
			cause:     err,
		}
	}
	if dec.More() {
		return nil, &ParseError{
			Excerpt: bodyExcerpt(resp.Body),
			cause:   errors.New("trailing data after top-level value"),
		}
	}
	return v, nil
}

// bodyExcerpt trims a body down to something loggable.
func bodyExcerpt(body []byte) string {
	if len(body) == 0 {
		return "<empty>"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxExcerptBytes {
		return s[:maxExcerptBytes] + "..."
	}
	return s
}

// htmlTitle pulls a title out of an HTML error page, best effort. Gateways
// tend to answer JSON endpoints with HTML when they fall over.
func htmlTitle(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
