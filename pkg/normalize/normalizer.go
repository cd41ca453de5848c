// Package normalize maps transport outcomes onto the closed core.Result taxonomy.
package normalize

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"signproxy/internal/transport"
	"signproxy/pkg/core"
)

// numberAPI decodes numbers as json.Number so large ids keep every digit.
var numberAPI = sonic.Config{UseNumber: true}.Froze()

// Normalize classifies one transport outcome. It is total: every combination
// of resp and err, including both nil, yields a non-nil Result.
func Normalize(resp *transport.Response, err error) *core.Result {
	if err != nil {
		return fromFailure(err)
	}
	if resp == nil {
		return core.Transport(core.TransportUnknown, "no response received")
	}
	if resp.IsSuccess() {
		return core.Success(resp.StatusCode, decodePayload(resp.Body))
	}
	return fromErrorResponse(resp)
}

func fromFailure(err error) *core.Result {
	var f *transport.Failure
	if !errors.As(err, &f) {
		return core.Transport(core.TransportUnknown, err.Error())
	}
	switch f.Symptom {
	case transport.SymptomTimeout:
		return core.Transport(core.TransportTimeout, f.Error())
	case transport.SymptomConnectionRefused, transport.SymptomDNS:
		return core.Transport(core.TransportUnreachable, f.Error())
	default:
		return core.Transport(core.TransportUnknown, f.Error())
	}
}

// decodePayload returns nil for an empty body, the decoded JSON value when
// possible and the raw text otherwise.
func decodePayload(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	var payload any
	if err := numberAPI.Unmarshal(trimmed, &payload); err != nil {
		return string(body)
	}
	return payload
}

// fromErrorResponse classifies every non-2xx response as an upstream error,
// including bodies without a {code,msg} object such as an HTML page from a
// proxy. A response was received, so TransportError is reserved for outcomes
// with no response at all; the missing code becomes CodeUnknown.
func fromErrorResponse(resp *transport.Response) *core.Result {
	code, msg := upstreamFields(resp.Body)
	if msg == "" {
		msg = strings.TrimSpace(string(resp.Body))
	}
	if msg == "" {
		msg = statusText(resp)
	}
	return core.Upstream(resp.StatusCode, code, msg)
}

// upstreamFields extracts {code, msg} from an upstream error object.
// Missing or mistyped fields come back empty.
func upstreamFields(body []byte) (code, msg string) {
	var obj map[string]any
	if err := numberAPI.Unmarshal(body, &obj); err != nil {
		return "", ""
	}
	switch c := obj["code"].(type) {
	case string:
		code = c
	case interface{ String() string }:
		code = c.String()
	}
	if m, ok := obj["msg"].(string); ok {
		msg = m
	}
	return code, msg
}

func statusText(resp *transport.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "upstream error"
}
