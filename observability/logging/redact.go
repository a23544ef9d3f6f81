package logging

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const RedactedValue = "[REDACTED]"

// Keys written by the host and the RPC server in clear text. Anything else
// passed through MaskField or MaskBytes is hidden.
var clearKeys = []string{
	"action", "component", "contract", "env", "error", "hash", "message",
	"method", "request_id", "sender", "service", "severity", "timestamp",
}

var redactionAllowlist = func() map[string]struct{} {
	set := make(map[string]struct{}, len(clearKeys))
	for _, k := range clearKeys {
		set[k] = struct{}{}
	}
	return set
}()

func IsAllowlisted(key string) bool {
	_, ok := redactionAllowlist[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// RedactionAllowlist returns the clear-text keys sorted.
func RedactionAllowlist() []string {
	keys := append([]string(nil), clearKeys...)
	sort.Strings(keys)
	return keys
}

// MaskField hides value unless key is allowlisted. Blank values pass through.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}

// MaskBytes logs only the length of raw key material such as public keys
// and signatures.
func MaskBytes(key string, value []byte) slog.Attr {
	if len(value) == 0 {
		return slog.String(key, "")
	}
	return slog.String(key, fmt.Sprintf("%s len=%d", RedactedValue, len(value)))
}
