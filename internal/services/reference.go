package services

import (
	"net/url"
	"strings"
)

// referenceParams are the query parameters a scanned QR link may carry the
// reference in, in order of preference.
var referenceParams = []string{"ref", "reference", "trxref"}

// ExtractReference turns raw gate-scanner input into a ticket reference. The
// input is either the bare reference or a link carrying it as a query
// parameter.
func ExtractReference(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" || (u.Scheme == "" && !strings.HasPrefix(raw, "?") && !strings.Contains(raw, "/")) {
		return raw
	}

	q := u.Query()
	for _, p := range referenceParams {
		if ref := strings.TrimSpace(q.Get(p)); ref != "" {
			return ref
		}
	}
	return raw
}
