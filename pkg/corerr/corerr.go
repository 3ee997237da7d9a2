// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package corerr defines the shared error taxonomy used across the runtime
// core: hooks, replay, agent lifecycle, isolation, sessions and the vector
// store all wrap their failures in a *Error so callers can branch on Kind
// instead of parsing messages.
package corerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a core error for programmatic handling.
type Kind string

const (
	Validation       Kind = "validation"
	NotFound         Kind = "not_found"
	PermissionDenied Kind = "permission_denied"
	QuotaExceeded    Kind = "quota_exceeded"
	RateLimited      Kind = "rate_limited"
	Timeout          Kind = "timeout"
	Cancelled        Kind = "cancelled"
	Conflict         Kind = "conflict"
	Storage          Kind = "storage"
	Configuration    Kind = "configuration"
	ProviderFailure  Kind = "provider_failure"
	Internal         Kind = "internal"
)

// Error is the common error envelope for the core.
type Error struct {
	Kind Kind
	Op   string
	Err  error

	// RetryAfter is set for Kind == RateLimited.
	RetryAfter time.Duration
	// Transient is set for Kind == ProviderFailure.
	Transient bool
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &corerr.Error{Kind: corerr.NotFound}) style
// checks by comparing Kind when the target is itself a *Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New builds an *Error of the given kind, wrapping cause (which may be nil).
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(op, format string, args ...any) *Error {
	return New(NotFound, op, fmt.Errorf(format, args...))
}

// Validationf builds a Validation error with a formatted message.
func Validationf(op, format string, args ...any) *Error {
	return New(Validation, op, fmt.Errorf(format, args...))
}

// RateLimitedErr builds a RateLimited error carrying the suggested wait.
func RateLimitedErr(op string, retryAfter time.Duration) *Error {
	return &Error{Kind: RateLimited, Op: op, RetryAfter: retryAfter, Err: errors.New("rate limit exceeded")}
}

// KindOf extracts the Kind of err, defaulting to Internal when err is not a
// *Error (or does not wrap one).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if err == nil {
		return ""
	}
	return Internal
}

// IsKind reports whether err is (or wraps) a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
