// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"net/http"
	"strings"
)

// StatusCoder is implemented by request-time errors which map to a
// stable HTTP status. Errors without it map to 500.
type StatusCoder interface {
	error

	StatusCode() int
}

// NotFoundError covers every 404 class failure: an unmatched route, a
// missing entity, or a page beyond the last one.
type NotFoundError struct {
	Detail string
}

func (e NotFoundError) Error() string {
	if e.Detail == "" {
		return "not found"
	}
	return e.Detail
}

// StatusCode implements the [StatusCoder] interface.
func (NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// ForbiddenError indicates no privilege matched the current actor.
type ForbiddenError struct {
	Collection string
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("access to collection %s is not granted", e.Collection)
}

// StatusCode implements the [StatusCoder] interface.
func (ForbiddenError) StatusCode() int {
	return http.StatusForbidden
}

// MethodNotAllowedError indicates the matched privilege does not allow
// the request's HTTP method. The message enumerates the permitted ones.
type MethodNotAllowedError struct {
	Method  string
	Allowed []string
}

func (e MethodNotAllowedError) Error() string {
	quoted := make([]string, len(e.Allowed))
	for i, m := range e.Allowed {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf("method %s is not allowed, allowed methods: %s", e.Method, strings.Join(quoted, ", "))
}

// StatusCode implements the [StatusCoder] interface.
func (MethodNotAllowedError) StatusCode() int {
	return http.StatusMethodNotAllowed
}

// BadRequestError indicates malformed or missing required input.
type BadRequestError struct {
	Cause error
}

func (e BadRequestError) Error() string {
	return fmt.Sprintf("bad request: %v", e.Cause)
}

func (e BadRequestError) Unwrap() error {
	return e.Cause
}

// StatusCode implements the [StatusCoder] interface.
func (BadRequestError) StatusCode() int {
	return http.StatusBadRequest
}

// ConflictError indicates a create collided with an existing unique value.
type ConflictError struct {
	Entity string
	Cause  error
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflicting %s already exists: %v", e.Entity, e.Cause)
}

func (e ConflictError) Unwrap() error {
	return e.Cause
}

// StatusCode implements the [StatusCoder] interface.
func (ConflictError) StatusCode() int {
	return http.StatusConflict
}

// UpstreamError wraps a storage or collaborator failure.
type UpstreamError struct {
	Cause error
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure: %v", e.Cause)
}

func (e UpstreamError) Unwrap() error {
	return e.Cause
}

// StatusCode implements the [StatusCoder] interface.
func (UpstreamError) StatusCode() int {
	return http.StatusInternalServerError
}

// statusOf maps any error to the status code and client-visible message
// of its envelope error object. Unrecognized errors become an opaque 500
// so internals never leak.
func statusOf(err error) (int, string) {
	sc, ok := err.(StatusCoder)
	if !ok {
		return http.StatusInternalServerError, "internal error"
	}
	return sc.StatusCode(), sc.Error()
}
