package data

import (
	"context"
	"net/http"
)

// Response is a plain body with a custom status code.
//
// Example usage:
//
//	func (c *UserController) Create(body CreateUser) (*data.Response, error) {
//	    user, err := c.store.Create(body)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return data.Created(user), nil
//	}
type Response struct {
	Base
	Body interface{}
}

// NewResponse creates a Response with the given status code and body
func NewResponse(statusCode int, body interface{}) *Response {
	r := &Response{Body: body}
	r.SetHTTPCode(statusCode)
	return r
}

// Send implements Sendable
func (r *Response) Send(context.Context) (interface{}, error) {
	return r.Body, nil
}

// OK creates a 200 response
func OK(body interface{}) *Response {
	return NewResponse(http.StatusOK, body)
}

// Created creates a 201 response
func Created(body interface{}) *Response {
	return NewResponse(http.StatusCreated, body)
}

// Accepted creates a 202 response
func Accepted(body interface{}) *Response {
	return NewResponse(http.StatusAccepted, body)
}

// NoContent creates a 204 response
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}
