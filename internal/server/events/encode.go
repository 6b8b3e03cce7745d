package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Encode serializes ev as {"type": <tag>, ...fields}. HTML and non-ASCII
// characters are written as is, not \u-escaped.
func Encode(ev Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type(), err)
	}

	body := bytes.TrimRight(buf.Bytes(), "\n")
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("encode %s: payload is not an object", ev.Type())
	}

	out := make([]byte, 0, len(body)+len(ev.Type())+12)
	out = append(out, `{"type":`...)
	out = strconv.AppendQuote(out, ev.Type())
	if len(body) > 2 {
		out = append(out, ',')
	}
	out = append(out, body[1:]...)
	return out, nil
}
