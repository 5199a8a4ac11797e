package chi

import (
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// queryString binds a form-style query parameter. Missing optional parameters yield "".
func queryString(r *http.Request, name string, required bool) (string, error) {
	var v string
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), &v); err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// queryInt binds an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// splitFiles turns "a.pdf, b.pdf," into [a.pdf b.pdf].
func splitFiles(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
