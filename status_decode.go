package ambience

import (
	"encoding/json"
	"errors"
	"strings"
)

var errStatusNotObject = errors.New("status is not a JSON object")

// decodeStatus parses text as a JSON object. Malformed payloads are logged
// and dropped; they never surface as errors.
func (b *base) decodeStatus(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)

	var status map[string]any
	err := json.Unmarshal([]byte(text), &status)
	if err == nil && status == nil {
		err = errStatusNotObject
	}
	if err != nil {
		b.logger.Warn().Err(err).Str("payload", text).Msg("dropping malformed status")
		return nil, false
	}
	return status, true
}
