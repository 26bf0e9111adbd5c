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

// Package media implements the media/upload.json protocol: a single
// multipart POST for images and the INIT/APPEND/FINALIZE/STATUS
// sub-protocol for video, returning the platform media id used by the
// posting pipeline.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/Imdavyking/econova/internal"
	"github.com/Imdavyking/econova/twitterapi/apierror"
	"github.com/Imdavyking/econova/twitterapi/session"
)

const uploadPath = "/1.1/media/upload.json"

// appendSegmentSize is fixed by the upload protocol: payloads are cut
// into 5 MiB segments with zero-based contiguous indices.
const appendSegmentSize = 5 * 1024 * 1024

const (
	defaultPollInterval = 5 * time.Second
	// The platform gives no upper bound for transcoding; cap the poll
	// loop so a stuck job cannot spin forever.
	defaultMaxPolls = 60
)

var uploadedBytes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "econova_media_uploaded_bytes_total",
		Help: "Bytes shipped to the media upload endpoint, by kind.",
	},
	[]string{"kind"},
)

// processingState mirrors processing_info.state of the STATUS response.
type processingState string

const (
	processingInProgress processingState = "in_progress"
	processingPending    processingState = "pending"
	processingSucceeded  processingState = "succeeded"
	processingFailed     processingState = "failed"
)

// uploadSession tracks one in-progress chunked upload.
type uploadSession struct {
	mediaID    string
	totalBytes int64
	bytesSent  int64
	state      processingState
}

// Uploader ships media attachments over one session. Phases of a
// chunked upload are strictly ordered and never run in parallel.
type Uploader struct {
	hc         *http.Client
	session    *session.Session
	uploadBase string
	logger     *log.Entry

	sleep        func(context.Context, time.Duration) error
	pollInterval time.Duration
	maxPolls     int
}

// NewUploader returns an Uploader bound to the given session.
// uploadBase is the upload origin, e.g. "https://upload.twitter.com".
func NewUploader(hc *http.Client, sess *session.Session, uploadBase string) *Uploader {
	return &Uploader{
		hc:           hc,
		session:      sess,
		uploadBase:   uploadBase,
		logger:       log.WithField("component", "media"),
		sleep:        internal.SleepWithContext,
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
}

// SetPollPolicy overrides how long finalize waits on video
// transcoding. Zero values keep the defaults.
func (u *Uploader) SetPollPolicy(interval time.Duration, maxPolls int) {
	if interval > 0 {
		u.pollInterval = interval
	}
	if maxPolls > 0 {
		u.maxPolls = maxPolls
	}
}

// Upload sends one attachment and returns its platform media id.
// Video MIME types take the chunked path; everything else is a single
// multipart POST.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if strings.HasPrefix(contentType, "video/") {
		return u.uploadChunked(ctx, data, contentType)
	}
	return u.uploadSimple(ctx, data)
}

// uploadSimple is the image path: one multipart POST carrying the raw
// bytes, media id read from media_id_string.
func (u *Uploader) uploadSimple(ctx context.Context, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("media", "media")
	if err != nil {
		return "", err
	}
	if _, err = part.Write(data); err != nil {
		return "", err
	}
	if err = w.Close(); err != nil {
		return "", err
	}

	body, err := u.post(ctx, u.uploadBase+uploadPath, w.FormDataContentType(), &buf)
	if err != nil {
		if he, ok := err.(*httpError); ok {
			return "", apierror.UploadInitFailed(he.body)
		}
		return "", err
	}
	mediaID := gjson.GetBytes(body, "media_id_string").Str
	if mediaID == "" {
		return "", apierror.UploadInitFailed(string(body))
	}
	uploadedBytes.WithLabelValues("image").Add(float64(len(data)))
	u.logger.WithFields(log.Fields{
		"media_id": mediaID,
		"bytes":    len(data),
	}).Info("Uploaded image")
	return mediaID, nil
}

func (u *Uploader) uploadChunked(ctx context.Context, data []byte, contentType string) (string, error) {
	us, err := u.initUpload(ctx, int64(len(data)), contentType)
	if err != nil {
		return "", err
	}
	if err := u.appendSegments(ctx, us, data); err != nil {
		return "", err
	}
	if err := u.finalizeUpload(ctx, us); err != nil {
		return "", err
	}
	if us.state == processingInProgress || us.state == processingPending {
		if err := u.awaitProcessing(ctx, us); err != nil {
			return "", err
		}
	}
	uploadedBytes.WithLabelValues("video").Add(float64(us.bytesSent))
	u.logger.WithFields(log.Fields{
		"media_id": us.mediaID,
		"bytes":    us.bytesSent,
	}).Info("Uploaded video")
	return us.mediaID, nil
}

// initUpload declares the payload and yields the media id the rest of
// the phases key on.
func (u *Uploader) initUpload(ctx context.Context, totalBytes int64, contentType string) (*uploadSession, error) {
	form := url.Values{
		"command":     {"INIT"},
		"total_bytes": {strconv.FormatInt(totalBytes, 10)},
		"media_type":  {contentType},
	}
	body, err := u.post(ctx, u.uploadBase+uploadPath, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		if ce, ok := err.(*httpError); ok {
			return nil, apierror.UploadInitFailed(ce.body)
		}
		return nil, err
	}
	mediaID := gjson.GetBytes(body, "media_id_string").Str
	if mediaID == "" {
		return nil, apierror.UploadInitFailed(string(body))
	}
	return &uploadSession{mediaID: mediaID, totalBytes: totalBytes}, nil
}

// appendSegments cuts the payload into 5 MiB segments and ships them
// in order. A failed segment aborts the upload; partial uploads are
// not resumed.
func (u *Uploader) appendSegments(ctx context.Context, us *uploadSession, data []byte) error {
	for segment := 0; us.bytesSent < us.totalBytes; segment++ {
		end := us.bytesSent + appendSegmentSize
		if end > us.totalBytes {
			end = us.totalBytes
		}
		chunk := data[us.bytesSent:end]

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := w.WriteField("command", "APPEND"); err != nil {
			return apierror.UploadAppendFailed(segment, err)
		}
		if err := w.WriteField("media_id", us.mediaID); err != nil {
			return apierror.UploadAppendFailed(segment, err)
		}
		if err := w.WriteField("segment_index", strconv.Itoa(segment)); err != nil {
			return apierror.UploadAppendFailed(segment, err)
		}
		part, err := w.CreateFormFile("media", "media")
		if err != nil {
			return apierror.UploadAppendFailed(segment, err)
		}
		if _, err = part.Write(chunk); err != nil {
			return apierror.UploadAppendFailed(segment, err)
		}
		if err = w.Close(); err != nil {
			return apierror.UploadAppendFailed(segment, err)
		}

		if _, err = u.post(ctx, u.uploadBase+uploadPath, w.FormDataContentType(), &buf); err != nil {
			return apierror.UploadAppendFailed(segment, err)
		}
		us.bytesSent = end
		u.logger.WithFields(log.Fields{
			"media_id": us.mediaID,
			"segment":  segment,
			"bytes":    len(chunk),
		}).Debug("Appended media segment")
	}
	return nil
}

func (u *Uploader) finalizeUpload(ctx context.Context, us *uploadSession) error {
	form := url.Values{
		"command":  {"FINALIZE"},
		"media_id": {us.mediaID},
	}
	body, err := u.post(ctx, u.uploadBase+uploadPath, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		if ce, ok := err.(*httpError); ok {
			return apierror.UploadFinalizeFailed(ce.body)
		}
		return err
	}
	if info := gjson.GetBytes(body, "processing_info"); info.Exists() {
		us.state = processingState(info.Get("state").Str)
		if us.state == "" {
			us.state = processingInProgress
		}
	}
	return nil
}

// awaitProcessing polls STATUS until transcoding leaves in_progress.
// The loop honours ctx and gives up after maxPolls rounds.
func (u *Uploader) awaitProcessing(ctx context.Context, us *uploadSession) error {
	for poll := 0; poll < u.maxPolls; poll++ {
		if err := u.sleep(ctx, u.pollInterval); err != nil {
			return err
		}
		statusURL := fmt.Sprintf("%s%s?command=STATUS&media_id=%s", u.uploadBase, uploadPath, url.QueryEscape(us.mediaID))
		body, err := u.get(ctx, statusURL)
		if err != nil {
			return err
		}
		us.state = processingState(gjson.GetBytes(body, "processing_info.state").Str)
		switch us.state {
		case processingSucceeded:
			return nil
		case processingFailed:
			return apierror.VideoProcessingFailed("media transcoding failed", string(body))
		}
	}
	return apierror.VideoProcessingFailed(
		fmt.Sprintf("media still processing after %d polls", u.maxPolls), "")
}

// httpError carries the body of a non-success upload response so the
// phase that made the call can wrap it in its own taxonomy entry.
type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("upload endpoint returned HTTP %d: %s", e.status, e.body)
}

func (u *Uploader) post(ctx context.Context, url, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return u.do(ctx, req)
}

func (u *Uploader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return u.do(ctx, req)
}

func (u *Uploader) do(ctx context.Context, req *http.Request) ([]byte, error) {
	u.session.InstallHeaders(req.Header)
	resp, err := u.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer internal.CloseAndLogIfError(ctx, resp.Body, "failed to close upload response body")
	u.session.UpdateFromResponse(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpError{status: resp.StatusCode, body: string(respBody)}
	}
	return respBody, nil
}
