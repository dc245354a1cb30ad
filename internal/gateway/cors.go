package gateway

import (
	"net/http"
	"slices"
)

const (
	allowOriginHeader      = "Access-Control-Allow-Origin"
	allowCredentialsHeader = "Access-Control-Allow-Credentials"
)

// rewriteCORS post-processes upstream response headers. An allow-listed
// request origin is echoed back with credentials enabled; otherwise any
// allow-origin header the kernel emitted (some configurations set a
// wildcard) is stripped so no conflicting grant leaks through.
func rewriteCORS(h http.Header, origin string, allowed []string) {
	if origin != "" && slices.Contains(allowed, origin) {
		h.Set(allowOriginHeader, origin)
		h.Set(allowCredentialsHeader, "true")
		return
	}
	h.Del(allowOriginHeader)
}
