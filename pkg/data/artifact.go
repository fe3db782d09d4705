package data

import "context"

// Artifact wraps a payload with a human readable message
type Artifact struct {
	Base
	Message string
	Data    interface{}
}

// NewArtifact creates an artifact with status 200
func NewArtifact(payload interface{}, message ...string) *Artifact {
	a := &Artifact{Data: payload}
	if len(message) > 0 {
		a.Message = message[0]
	}
	return a
}

// WithCode sets the status code and returns the artifact
func (a *Artifact) WithCode(code int) *Artifact {
	a.SetHTTPCode(code)
	return a
}

// Export returns the client payload
func (a *Artifact) Export() map[string]interface{} {
	return map[string]interface{}{
		"message": a.Message,
		"data":    a.Data,
	}
}

// Send implements Sendable
func (a *Artifact) Send(context.Context) (interface{}, error) {
	return a.Export(), nil
}
