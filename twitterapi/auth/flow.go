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

package auth

import (
	"context"
	"encoding/json"

	"github.com/Imdavyking/econova/twitterapi/apierror"
)

// initLoginRequest opens the flow. The shape is fixed; Twitter only
// looks at the start location.
type initLoginRequest struct {
	InputFlowData struct {
		FlowContext struct {
			DebugOverrides struct{} `json:"debug_overrides"`
			StartLocation  struct {
				Location string `json:"location"`
			} `json:"start_location"`
		} `json:"flow_context"`
	} `json:"input_flow_data"`
}

func (f *Flow) initLogin(ctx context.Context) (*flowResponse, error) {
	var req initLoginRequest
	req.InputFlowData.FlowContext.StartLocation.Location = "splash_screen"
	body, err := json.Marshal(&req)
	if err != nil {
		return nil, err
	}
	return f.executeFlowTask(ctx, f.apiBase+onboardingTaskPath+"?flow_name=login", body)
}

// step sends one subtask input, consuming the flow token of the
// previous response.
func (f *Flow) step(ctx context.Context, flowToken string, input interface{}) (*flowResponse, error) {
	body, err := json.Marshal(&flowTaskRequest{
		FlowToken:     flowToken,
		SubtaskInputs: []interface{}{input},
	})
	if err != nil {
		return nil, err
	}
	return f.executeFlowTask(ctx, f.apiBase+onboardingTaskPath, body)
}

// Login promotes the session from anonymous to authenticated by
// driving the onboarding subtask state machine to completion. A fresh
// guest token is activated and stale identity cookies are purged
// before the first step. Any unrecognised subtask terminates the run
// without consuming further input.
func (f *Flow) Login(ctx context.Context, creds Credentials) error {
	err := f.login(ctx, creds)
	if err != nil {
		loginOutcomes.WithLabelValues("failure").Inc()
		return err
	}
	loginOutcomes.WithLabelValues("success").Inc()
	return nil
}

func (f *Flow) login(ctx context.Context, creds Credentials) error {
	if err := f.Bootstrap(ctx); err != nil {
		return err
	}
	f.session.PurgeLoginCookies()

	resp, err := f.initLogin(ctx)
	if err != nil {
		return err
	}

	for steps := 0; resp.subtaskID != ""; steps++ {
		if steps >= maxFlowSteps {
			return apierror.AuthenticationDenied("login flow did not converge", string(resp.body))
		}
		f.logger.WithField("subtask", resp.subtaskID).Debug("Handling login subtask")

		switch parseSubtask(resp.subtaskID) {
		case SubtaskJSInstrumentation:
			resp, err = f.step(ctx, resp.flowToken, newJSInstrumentationInput())
		case SubtaskEnterUserIdentifier:
			resp, err = f.step(ctx, resp.flowToken, newUserIdentifierInput(creds.Username))
		case SubtaskEnterAlternateIdentifier:
			resp, err = f.step(ctx, resp.flowToken, newEnterTextInput(subtaskIDEnterAlternateIdentifier, creds.Email))
		case SubtaskEnterPassword:
			resp, err = f.step(ctx, resp.flowToken, newEnterPasswordInput(creds.Password))
		case SubtaskAccountDuplicationCheck:
			resp, err = f.step(ctx, resp.flowToken, newDuplicationCheckInput())
		case SubtaskTwoFactorChallenge:
			resp, err = f.solveTwoFactor(ctx, resp.flowToken, creds.TwoFactorSecret)
		case SubtaskAcid:
			resp, err = f.step(ctx, resp.flowToken, newEnterTextInput(subtaskIDAcid, creds.Email))
		case SubtaskSuccess:
			resp, err = f.step(ctx, resp.flowToken, &confirmationInput{SubtaskID: subtaskIDSuccess})
		case SubtaskDenyLogin:
			return apierror.AuthenticationDenied("platform denied the login attempt", string(resp.body))
		case SubtaskUnknown:
			return apierror.UnknownSubtask(resp.subtaskID)
		}
		if err != nil {
			return err
		}
	}

	f.session.MarkAuthenticated()
	f.logger.WithField("username", creds.Username).Info("Login flow completed")
	return nil
}
