package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteEvent writes one server-sent event frame with a JSON encoded payload.
func WriteEvent(w io.Writer, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if strings.ContainsAny(event, "\r\n") {
		return fmt.Errorf("invalid event name %q", event)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
