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

// Package session holds the mutable identity state of one Twitter web
// session: the cookie jar, the guest token and the authenticated flag.
// A Session is owned by exactly one client; operations on it are
// serialised by the protocol itself but the store is still guarded so
// that observing it from another goroutine is safe.
package session

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// CSRFCookieName is the cookie the platform uses to carry the
// anti-forgery token echoed in the x-csrf-token header.
const CSRFCookieName = "ct0"

// loginPurgeCookies are removed before every fresh login attempt.
// Twitter complains about stale identity state if these survive from a
// previous session.
var loginPurgeCookies = []string{
	"twitter_ads_id",
	"ads_prefs",
	"_twitter_sess",
	"zipbox_forms_auth_token",
	"lang",
	"bouncer_reset_cookie",
	"twid",
	"twitter_ads_idb",
	"email_uid",
	"external_referer",
	"ct0",
	"aa_u",
}

// Cookie is the minimal cookie shape the engine needs: enough to render
// a Cookie header and to remove entries by name.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// Session is the single source of truth for cookies, guest token and
// CSRF token. It starts anonymous and is promoted to authenticated by
// a completed login flow.
type Session struct {
	bearerToken string
	userAgent   string

	mu               sync.Mutex
	guestToken       string
	guestActivatedAt time.Time
	cookies          []Cookie
	authenticated    bool
}

// New returns an anonymous session carrying the process-wide bearer
// credential. The guest token is empty until Bootstrap has run.
func New(bearerToken, userAgent string) *Session {
	return &Session{
		bearerToken: bearerToken,
		userAgent:   userAgent,
	}
}

// BearerToken returns the static bearer credential.
func (s *Session) BearerToken() string { return s.bearerToken }

// InstallCookies parses one or more Set-Cookie header values and
// upserts them into the jar, keyed by (name, domain, path). Fragments
// that fail to parse are ignored.
func (s *Session) InstallCookies(setCookies ...string) {
	// net/http only exposes Set-Cookie parsing through a Response.
	parsed := (&http.Response{Header: http.Header{"Set-Cookie": setCookies}}).Cookies()
	if len(parsed) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range parsed {
		s.upsertLocked(Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
}

// UpdateFromResponse installs every Set-Cookie header of resp into the
// jar. This is applied to error responses too: the platform rotates
// CSRF state even on failures.
func (s *Session) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}
	if sc := resp.Header.Values("Set-Cookie"); len(sc) > 0 {
		s.InstallCookies(sc...)
	}
}

func (s *Session) upsertLocked(c Cookie) {
	for i := range s.cookies {
		if s.cookies[i].Name == c.Name && s.cookies[i].Domain == c.Domain && s.cookies[i].Path == c.Path {
			s.cookies[i].Value = c.Value
			return
		}
	}
	s.cookies = append(s.cookies, c)
}

// CookieHeader renders the jar as a single "name=value; ..." header
// value, in insertion order.
func (s *Session) CookieHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.cookies))
	for _, c := range s.cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Cookies returns a copy of the current jar.
func (s *Session) Cookies() []Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Cookie, len(s.cookies))
	copy(out, s.cookies)
	return out
}

// CSRFToken returns the value of the ct0 cookie. The second return is
// false when the cookie is absent; callers treat that as a retryable
// precondition failure.
func (s *Session) CSRFToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The freshest value wins if several domain/path variants exist.
	for i := len(s.cookies) - 1; i >= 0; i-- {
		if s.cookies[i].Name == CSRFCookieName {
			return s.cookies[i].Value, true
		}
	}
	return "", false
}

// RemoveCookie deletes every entry with the given name, regardless of
// domain and path.
func (s *Session) RemoveCookie(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cookies[:0]
	for _, c := range s.cookies {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	s.cookies = kept
}

// PurgeLoginCookies removes the stale identity cookies that must not
// survive into a fresh login attempt.
func (s *Session) PurgeLoginCookies() {
	for _, name := range loginPurgeCookies {
		s.RemoveCookie(name)
	}
}

// SetGuestToken replaces the guest token. Called by the bootstrap and
// safe to repeat.
func (s *Session) SetGuestToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guestToken = token
	s.guestActivatedAt = time.Now()
}

// GuestToken returns the current guest token, or "" before bootstrap.
func (s *Session) GuestToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guestToken
}

// GuestTokenStale reports whether the guest token is older than maxAge
// (or missing entirely). The platform expires guest tokens after a few
// hours, so long-lived processes re-bootstrap.
func (s *Session) GuestTokenStale(maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guestToken == "" {
		return true
	}
	return time.Since(s.guestActivatedAt) > maxAge
}

// Authenticated reports whether a login flow has completed on this
// session.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// MarkAuthenticated promotes the session. Only the login flow calls
// this, after the platform reports flow completion.
func (s *Session) MarkAuthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
}

// InstallHeaders sets the headers the platform requires on every call:
// the bearer credential, the rendered cookie jar, the guest token and
// the fixed browser-identity headers. The CSRF header is set only when
// a ct0 cookie is present; callers that require it check CSRFToken
// first.
func (s *Session) InstallHeaders(h http.Header) {
	h.Set("Authorization", "Bearer "+s.bearerToken)
	h.Set("User-Agent", s.userAgent)
	h.Set("x-twitter-auth-type", "OAuth2Client")
	h.Set("x-twitter-active-user", "yes")
	h.Set("x-twitter-client-language", "en")
	if cookie := s.CookieHeader(); cookie != "" {
		h.Set("Cookie", cookie)
	}
	if guest := s.GuestToken(); guest != "" {
		h.Set("x-guest-token", guest)
	}
	if csrf, ok := s.CSRFToken(); ok {
		h.Set("x-csrf-token", csrf)
	}
}
