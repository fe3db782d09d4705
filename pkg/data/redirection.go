package data

import (
	"context"
	"fmt"
	"net/http"
)

// Redirection sends the client to another location
type Redirection struct {
	Base
	location string
}

// Redirect creates a 302 redirection to location
func Redirect(location string) *Redirection {
	r := &Redirection{location: location}
	r.SetHTTPCode(http.StatusFound)
	return r
}

// RedirectWithCode creates a redirection with an explicit 3xx code
func RedirectWithCode(location string, code int) (*Redirection, error) {
	switch code {
	case http.StatusMultipleChoices, http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusNotModified, http.StatusUseProxy, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return nil, fmt.Errorf("%d is not a redirection status code", code)
	}
	r := &Redirection{location: location}
	r.SetHTTPCode(code)
	return r, nil
}

// Location returns the redirect target
func (r *Redirection) Location() string {
	return r.location
}

// Send implements Sendable
func (r *Redirection) Send(context.Context) (interface{}, error) {
	return map[string]interface{}{
		"httpCode": r.HTTPCode(),
		"location": r.location,
	}, nil
}
