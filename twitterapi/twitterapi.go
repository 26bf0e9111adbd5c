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

// Package twitterapi assembles the session engine: one Client owns a
// Session and wires the auth flow, the media uploader and the posting
// pipeline over a shared HTTP client. Operations on one Client are
// sequential; run one Client per account for parallelism.
package twitterapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Imdavyking/econova/setup/config"
	"github.com/Imdavyking/econova/twitterapi/auth"
	"github.com/Imdavyking/econova/twitterapi/media"
	"github.com/Imdavyking/econova/twitterapi/posting"
	"github.com/Imdavyking/econova/twitterapi/session"
)

// Client is the top-level handle on one platform identity.
type Client struct {
	cfg      *config.Twitter
	session  *session.Session
	flow     *auth.Flow
	uploader *media.Uploader
	poster   *posting.Poster
}

// NewClient builds a Client from config. The session starts anonymous;
// call Login to promote it.
func NewClient(cfg *config.Twitter) *Client {
	hc := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
		},
	}
	return newClientWithHTTP(cfg, hc)
}

func newClientWithHTTP(cfg *config.Twitter, hc *http.Client) *Client {
	sess := session.New(cfg.BearerToken, cfg.UserAgent)
	uploader := media.NewUploader(hc, sess, cfg.UploadBase)
	uploader.SetPollPolicy(cfg.MediaPollInterval, cfg.MediaMaxPolls)
	return &Client{
		cfg:      cfg,
		session:  sess,
		flow:     auth.NewFlow(hc, sess, cfg.APIBase),
		uploader: uploader,
		poster:   posting.NewPoster(hc, sess, cfg.GraphQLBase),
	}
}

// Session exposes the session store, e.g. for inspecting cookies.
func (c *Client) Session() *session.Session { return c.session }

// EnsureGuestToken bootstraps an anonymous session if the guest token
// is missing or older than the configured expiry. Authenticated
// sessions identify by cookies and need no guest token.
func (c *Client) EnsureGuestToken(ctx context.Context) error {
	if c.session.Authenticated() || !c.session.GuestTokenStale(c.cfg.GuestTokenMaxAge) {
		return nil
	}
	return c.flow.Bootstrap(ctx)
}

// Login drives the full login flow with the configured credentials,
// promoting the session to authenticated.
func (c *Client) Login(ctx context.Context) error {
	return c.flow.Login(ctx, auth.Credentials{
		Username:        c.cfg.Credentials.Username,
		Password:        c.cfg.Credentials.Password,
		Email:           c.cfg.Credentials.Email,
		TwoFactorSecret: c.cfg.Credentials.TwoFactorSecret,
	})
}

// UploadMedia ships one attachment and returns its media id for use in
// PostTweet.
func (c *Client) UploadMedia(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := c.EnsureGuestToken(ctx); err != nil {
		return "", err
	}
	return c.uploader.Upload(ctx, data, contentType)
}

// PostTweet submits one post on the authenticated session.
func (c *Client) PostTweet(ctx context.Context, req *posting.TweetRequest) (*posting.Tweet, error) {
	if err := c.EnsureGuestToken(ctx); err != nil {
		return nil, err
	}
	return c.poster.CreateTweet(ctx, req)
}
