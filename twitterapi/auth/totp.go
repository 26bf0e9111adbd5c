package auth

import (
	"context"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/Imdavyking/econova/twitterapi/apierror"
)

// twoFactorMaxRetries is the number of additional attempts after the
// first failing submission. Each retry waits 2×attempt time units and
// regenerates the code: TOTP codes are time-windowed, so resending a
// stale one would fail regardless of the platform's mood.
const twoFactorMaxRetries = 3

func (f *Flow) solveTwoFactor(ctx context.Context, flowToken, secret string) (*flowResponse, error) {
	if secret == "" {
		return nil, apierror.TwoFactorSecretRequired()
	}

	var lastErr error
	for attempt := 0; attempt <= twoFactorMaxRetries; attempt++ {
		if attempt > 0 {
			if err := f.sleep(ctx, time.Duration(2*attempt)*time.Second); err != nil {
				return nil, err
			}
		}

		code, err := totp.GenerateCode(secret, f.now())
		if err != nil {
			// A malformed secret will never start working; don't burn
			// the retry budget on it.
			return nil, apierror.TwoFactorFailed(err)
		}

		resp, err := f.step(ctx, flowToken, newEnterTextInput(subtaskIDTwoFactorChallenge, code))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		f.logger.WithError(err).WithField("attempt", attempt+1).Warn("Two-factor challenge attempt failed")
	}
	return nil, apierror.TwoFactorFailed(lastErr)
}
