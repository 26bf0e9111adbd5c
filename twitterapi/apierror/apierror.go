// Copyright 2024 The econova Authors
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

// Package apierror defines the error taxonomy of the Twitter client engine.
// Every failure surfaced by the engine is a *ClientError carrying a stable
// error code and, where available, the offending response body.
package apierror

import (
	"errors"
	"fmt"
)

const (
	ErrCodeBootstrapFailed         = "BOOTSTRAP_FAILED"
	ErrCodeCsrfTokenAbsent         = "CSRF_TOKEN_ABSENT"
	ErrCodeUnknownSubtask          = "UNKNOWN_SUBTASK"
	ErrCodeAuthenticationDenied    = "AUTHENTICATION_DENIED"
	ErrCodeNotAuthenticated        = "NOT_AUTHENTICATED"
	ErrCodeTwoFactorSecretRequired = "TWO_FACTOR_SECRET_REQUIRED"
	ErrCodeTwoFactorFailed         = "TWO_FACTOR_FAILED"
	ErrCodeSubmissionFailed        = "SUBMISSION_FAILED"
	ErrCodeUploadInitFailed        = "UPLOAD_INIT_FAILED"
	ErrCodeUploadAppendFailed      = "UPLOAD_APPEND_FAILED"
	ErrCodeUploadFinalizeFailed    = "UPLOAD_FINALIZE_FAILED"
	ErrCodeVideoProcessingFailed   = "VIDEO_PROCESSING_FAILED"
)

// ClientError is the standard error shape returned by the engine.
type ClientError struct {
	ErrCode string `json:"errcode"`
	Err     string `json:"error"`
	// Body is the raw response body that triggered the error, if any.
	// Kept out of Error() so logs decide how much to show.
	Body string `json:"body,omitempty"`
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Err)
}

// Code returns the error code of err if it is a *ClientError, or "".
func Code(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.ErrCode
	}
	return ""
}

// BootstrapFailed is an error when guest token activation does not
// return HTTP 200.
func BootstrapFailed(body string) *ClientError {
	return &ClientError{ErrCodeBootstrapFailed, "failed to activate a guest token", body}
}

// CsrfTokenAbsent is an error when the ct0 cookie is missing from the
// session. Callers may retry after the jar has been refreshed.
func CsrfTokenAbsent() *ClientError {
	return &ClientError{ErrCodeCsrfTokenAbsent, "no ct0 cookie in the session", ""}
}

// UnknownSubtask is an error when the login flow returns a subtask id
// the state machine has no handler for.
func UnknownSubtask(subtaskID string) *ClientError {
	return &ClientError{ErrCodeUnknownSubtask, "unrecognised login subtask: " + subtaskID, ""}
}

// AuthenticationDenied is an error when the platform rejects the login,
// either via DenyLoginSubtask or an errors[] entry.
func AuthenticationDenied(msg, body string) *ClientError {
	return &ClientError{ErrCodeAuthenticationDenied, msg, body}
}

// NotAuthenticated is an error when an operation requiring a logged-in
// session is attempted on an anonymous one.
func NotAuthenticated(op string) *ClientError {
	return &ClientError{ErrCodeNotAuthenticated, op + " requires an authenticated session", ""}
}

// TwoFactorSecretRequired is an error when the login flow reaches the
// two-factor challenge but no shared secret was configured.
func TwoFactorSecretRequired() *ClientError {
	return &ClientError{ErrCodeTwoFactorSecretRequired, "two-factor challenge reached but no TOTP secret configured", ""}
}

// TwoFactorFailed wraps the last error after the bounded 2FA retries
// are exhausted.
func TwoFactorFailed(last error) *ClientError {
	return &ClientError{ErrCodeTwoFactorFailed, "two-factor challenge failed: " + last.Error(), ""}
}

// SubmissionFailed is an error when the CreateTweet call returns a
// non-success status.
func SubmissionFailed(body string) *ClientError {
	return &ClientError{ErrCodeSubmissionFailed, "tweet submission rejected", body}
}

// UploadInitFailed is an error when the INIT phase of a chunked upload
// is rejected.
func UploadInitFailed(body string) *ClientError {
	return &ClientError{ErrCodeUploadInitFailed, "media upload INIT rejected", body}
}

// UploadAppendFailed is an error when an APPEND segment fails. The
// failing segment index is recorded in the message; the upload is not
// resumed.
func UploadAppendFailed(segment int, cause error) *ClientError {
	return &ClientError{ErrCodeUploadAppendFailed, fmt.Sprintf("media upload APPEND failed at segment %d: %s", segment, cause), ""}
}

// UploadFinalizeFailed is an error when the FINALIZE phase is rejected.
func UploadFinalizeFailed(body string) *ClientError {
	return &ClientError{ErrCodeUploadFinalizeFailed, "media upload FINALIZE rejected", body}
}

// VideoProcessingFailed is an error when asynchronous transcoding ends
// in the failed state, or the status poll gives up.
func VideoProcessingFailed(msg, body string) *ClientError {
	return &ClientError{ErrCodeVideoProcessingFailed, msg, body}
}
