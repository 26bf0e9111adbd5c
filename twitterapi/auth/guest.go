package auth

import (
	"context"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/Imdavyking/econova/internal"
	"github.com/Imdavyking/econova/twitterapi/apierror"
)

// Bootstrap obtains a guest token, the precondition for every other
// platform call. It is idempotent: repeating it simply replaces the
// token, which the login flow does before each attempt.
func (f *Flow) Bootstrap(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.apiBase+guestActivatePath, nil)
	if err != nil {
		return err
	}
	f.session.InstallHeaders(req.Header)

	resp, err := f.hc.Do(req)
	if err != nil {
		return err
	}
	defer internal.CloseAndLogIfError(ctx, resp.Body, "failed to close guest activation response body")
	f.session.UpdateFromResponse(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return apierror.BootstrapFailed(string(body))
	}

	guestToken := gjson.GetBytes(body, "guest_token").Str
	if guestToken == "" {
		return apierror.BootstrapFailed(string(body))
	}
	f.session.SetGuestToken(guestToken)
	f.logger.WithField("guest_token", guestToken).Debug("Activated guest token")
	return nil
}
