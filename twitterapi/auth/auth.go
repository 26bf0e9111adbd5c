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

// Package auth drives the anonymous session bootstrap and the
// multi-step onboarding login flow against the Twitter private web API.
package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/Imdavyking/econova/internal"
	"github.com/Imdavyking/econova/twitterapi/apierror"
	"github.com/Imdavyking/econova/twitterapi/session"
)

const (
	guestActivatePath  = "/1.1/guest/activate.json"
	onboardingTaskPath = "/1.1/onboarding/task.json"
)

// The flow has to converge; a run that is still bouncing between
// subtasks after this many exchanges is broken upstream.
const maxFlowSteps = 20

var loginOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "econova_auth_login_total",
		Help: "Login flow runs by outcome.",
	},
	[]string{"outcome"},
)

// Credentials are the caller-supplied account secrets consumed by the
// login flow. TwoFactorSecret may be empty if the account has no 2FA.
type Credentials struct {
	Username        string
	Password        string
	Email           string
	TwoFactorSecret string
}

// Flow runs the guest bootstrap and the login subtask state machine
// over one session. Operations are sequential: each step consumes the
// flow token produced by the previous one.
type Flow struct {
	hc      *http.Client
	session *session.Session
	apiBase string
	logger  *log.Entry

	// sleep and now are injected so tests can run the 2FA backoff
	// with a zero-delay clock.
	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// NewFlow returns a Flow bound to the given session. apiBase is the
// platform API origin, e.g. "https://api.twitter.com".
func NewFlow(hc *http.Client, sess *session.Session, apiBase string) *Flow {
	return &Flow{
		hc:      hc,
		session: sess,
		apiBase: apiBase,
		logger:  log.WithField("component", "auth"),
		sleep:   internal.SleepWithContext,
		now:     time.Now,
	}
}

// flowResponse is one parsed onboarding exchange: the raw body, the
// continuation token and the next pending subtask (empty when the flow
// is complete).
type flowResponse struct {
	body      []byte
	flowToken string
	subtaskID string
}

// executeFlowTask sends one onboarding request. The current CSRF and
// guest tokens are re-installed immediately before sending, and cookies
// from the response are installed even when the exchange fails.
func (f *Flow) executeFlowTask(ctx context.Context, url string, body []byte) (*flowResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	f.session.InstallHeaders(req.Header)

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer internal.CloseAndLogIfError(ctx, resp.Body, "failed to close onboarding response body")
	f.session.UpdateFromResponse(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if errs := gjson.GetBytes(respBody, "errors"); errs.IsArray() && len(errs.Array()) > 0 {
		msg := errs.Array()[0].Get("message").Str
		if msg == "" {
			msg = "platform reported a login error"
		}
		return nil, apierror.AuthenticationDenied(msg, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierror.AuthenticationDenied("login step rejected with status "+resp.Status, string(respBody))
	}

	flowToken := gjson.GetBytes(respBody, "flow_token").Str
	if flowToken == "" {
		return nil, apierror.AuthenticationDenied("login response carried no flow token", string(respBody))
	}

	return &flowResponse{
		body:      respBody,
		flowToken: flowToken,
		subtaskID: gjson.GetBytes(respBody, "subtasks.0.subtask_id").Str,
	}, nil
}
