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

// Package posting builds and sends the authenticated CreateTweet
// GraphQL request, attaching media ids produced by the media package.
package posting

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Imdavyking/econova/internal"
	"github.com/Imdavyking/econova/twitterapi/apierror"
	"github.com/Imdavyking/econova/twitterapi/session"
)

// CreateTweetPath is the GraphQL operation the web client uses for
// posting. The hash segment is tied to the persisted query the fixed
// feature flags belong to.
const CreateTweetPath = "/i/api/graphql/a1p9RWpkYKBjWv_I3WzS-A/CreateTweet"

var tweetsSubmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "econova_posting_tweets_total",
		Help: "CreateTweet submissions by outcome.",
	},
	[]string{"outcome"},
)

// TweetRequest describes one post. MediaIDs must already have been
// uploaded; each is tagged with an empty user-mention list.
type TweetRequest struct {
	Text            string
	ReplyToTweetID  string
	HideLinkPreview bool
	MediaIDs        []string
}

// Tweet is the created post as reported by the platform.
type Tweet struct {
	ID   string
	Text string
}

type mediaEntity struct {
	MediaID     string   `json:"media_id"`
	TaggedUsers []string `json:"tagged_users"`
}

// Poster submits tweets over an authenticated session.
type Poster struct {
	hc       *http.Client
	session  *session.Session
	tweetURL string
	logger   *log.Entry
}

// NewPoster returns a Poster bound to the given session. graphqlBase
// is the web origin, e.g. "https://twitter.com".
func NewPoster(hc *http.Client, sess *session.Session, graphqlBase string) *Poster {
	return &Poster{
		hc:       hc,
		session:  sess,
		tweetURL: graphqlBase + CreateTweetPath,
		logger:   log.WithField("component", "posting"),
	}
}

// buildBody renders the CreateTweet request body. The optional reply
// and card_uri fields only appear when set, which is why this goes
// through sjson rather than a fixed struct.
func buildBody(req *TweetRequest) ([]byte, error) {
	body := []byte(`{"variables":{"tweet_text":"","dark_request":false,"media":{"media_entities":[],"possibly_sensitive":false},"semantic_annotation_ids":[]},"features":` + graphqlFeatures + `,"fieldToggles":{}}`)

	body, err := sjson.SetBytes(body, "variables.tweet_text", req.Text)
	if err != nil {
		return nil, err
	}
	for _, id := range req.MediaIDs {
		body, err = sjson.SetBytes(body, "variables.media.media_entities.-1", mediaEntity{MediaID: id, TaggedUsers: []string{}})
		if err != nil {
			return nil, err
		}
	}
	if req.HideLinkPreview {
		body, err = sjson.SetBytes(body, "variables.card_uri", "tombstone://card")
		if err != nil {
			return nil, err
		}
	}
	if req.ReplyToTweetID != "" {
		body, err = sjson.SetBytes(body, "variables.reply.in_reply_to_tweet_id", req.ReplyToTweetID)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

// CreateTweet posts one tweet. It requires an authenticated session
// and a present CSRF cookie; cookies from the response are installed
// even on failure since the platform rotates CSRF state on errors too.
func (p *Poster) CreateTweet(ctx context.Context, req *TweetRequest) (*Tweet, error) {
	tweet, err := p.createTweet(ctx, req)
	if err != nil {
		tweetsSubmitted.WithLabelValues("failure").Inc()
		return nil, err
	}
	tweetsSubmitted.WithLabelValues("success").Inc()
	return tweet, nil
}

func (p *Poster) createTweet(ctx context.Context, req *TweetRequest) (*Tweet, error) {
	if !p.session.Authenticated() {
		return nil, apierror.NotAuthenticated("CreateTweet")
	}
	if _, ok := p.session.CSRFToken(); !ok {
		return nil, apierror.CsrfTokenAbsent()
	}

	body, err := buildBody(req)
	if err != nil {
		return nil, err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tweetURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	p.session.InstallHeaders(hreq.Header)

	resp, err := p.hc.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer internal.CloseAndLogIfError(ctx, resp.Body, "failed to close CreateTweet response body")
	p.session.UpdateFromResponse(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierror.SubmissionFailed(string(respBody))
	}
	if errs := gjson.GetBytes(respBody, "errors"); errs.IsArray() && len(errs.Array()) > 0 {
		return nil, apierror.SubmissionFailed(string(respBody))
	}

	result := gjson.GetBytes(respBody, "data.create_tweet.tweet_results.result")
	tweet := &Tweet{
		ID:   result.Get("rest_id").Str,
		Text: result.Get("legacy.full_text").Str,
	}
	p.logger.WithFields(log.Fields{
		"tweet_id": tweet.ID,
		"media":    len(req.MediaIDs),
	}).Info("Tweet submitted")
	return tweet, nil
}
