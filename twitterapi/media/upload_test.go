package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Imdavyking/econova/twitterapi/apierror"
	"github.com/Imdavyking/econova/twitterapi/session"
)

type uploadEvent struct {
	command      string
	totalBytes   string
	mediaType    string
	mediaID      string
	segmentIndex string
	payloadSize  int
}

// fakeUploadServer records every upload.json call and lets tests fail
// chosen APPEND segments and script the STATUS poll states.
type fakeUploadServer struct {
	t *testing.T

	mu            sync.Mutex
	events        []uploadEvent
	failSegment   int // APPEND segment index to reject, -1 for none
	statusStates  []string
	statusServed  int
	finalizeBody  string
	simpleMediaID string
}

func newFakeUploadServer(t *testing.T) *fakeUploadServer {
	return &fakeUploadServer{
		t:             t,
		failSegment:   -1,
		finalizeBody:  `{"media_id_string":"7777"}`,
		simpleMediaID: "1234",
	}
}

func (s *fakeUploadServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			s.mu.Lock()
			s.events = append(s.events, uploadEvent{command: "STATUS", mediaID: r.URL.Query().Get("media_id")})
			idx := s.statusServed
			s.statusServed++
			s.mu.Unlock()
			state := "in_progress"
			if idx < len(s.statusStates) {
				state = s.statusStates[idx]
			}
			fmt.Fprintf(w, `{"processing_info":{"state":%q}}`, state)
			return
		}

		_ = r.ParseMultipartForm(32 << 20)
		ev := uploadEvent{
			command:      r.FormValue("command"),
			totalBytes:   r.FormValue("total_bytes"),
			mediaType:    r.FormValue("media_type"),
			mediaID:      r.FormValue("media_id"),
			segmentIndex: r.FormValue("segment_index"),
		}
		if r.MultipartForm != nil {
			if files := r.MultipartForm.File["media"]; len(files) > 0 {
				f, err := files[0].Open()
				require.NoError(s.t, err)
				data, err := io.ReadAll(f)
				require.NoError(s.t, err)
				_ = f.Close()
				ev.payloadSize = len(data)
			}
		}
		s.mu.Lock()
		s.events = append(s.events, ev)
		s.mu.Unlock()

		switch ev.command {
		case "":
			// Image path: a bare multipart POST with no command.
			fmt.Fprintf(w, `{"media_id_string":%q}`, s.simpleMediaID)
		case "INIT":
			_, _ = w.Write([]byte(`{"media_id_string":"7777"}`))
		case "APPEND":
			if ev.segmentIndex == fmt.Sprint(s.failSegment) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"errors":[{"message":"segment rejected"}]}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case "FINALIZE":
			_, _ = w.Write([]byte(s.finalizeBody))
		default:
			s.t.Errorf("unexpected upload command %q", ev.command)
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
}

func (s *fakeUploadServer) recorded() []uploadEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uploadEvent, len(s.events))
	copy(out, s.events)
	return out
}

func newTestUploader(t *testing.T, s *fakeUploadServer) (*Uploader, func()) {
	srv := httptest.NewServer(s.handler())
	sess := session.New("test-bearer", "test-agent")
	sess.SetGuestToken("g1")
	u := NewUploader(srv.Client(), sess, srv.URL)
	u.sleep = func(context.Context, time.Duration) error { return nil }
	return u, srv.Close
}

func TestUploadImage(t *testing.T) {
	s := newFakeUploadServer(t)
	u, done := newTestUploader(t, s)
	defer done()

	data := make([]byte, 100)
	mediaID, err := u.Upload(context.Background(), data, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "1234", mediaID)

	events := s.recorded()
	require.Len(t, events, 1, "image upload must be a single POST")
	assert.Equal(t, "", events[0].command)
	assert.Equal(t, 100, events[0].payloadSize)
}

func TestUploadVideoChunked(t *testing.T) {
	s := newFakeUploadServer(t)
	s.finalizeBody = `{"media_id_string":"7777","processing_info":{"state":"pending","check_after_secs":1}}`
	s.statusStates = []string{"in_progress", "succeeded"}
	u, done := newTestUploader(t, s)
	defer done()

	var delays []time.Duration
	u.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	data := make([]byte, 12*1024*1024)
	mediaID, err := u.Upload(context.Background(), data, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "7777", mediaID)

	events := s.recorded()
	require.Len(t, events, 7) // INIT, 3×APPEND, FINALIZE, 2×STATUS

	assert.Equal(t, "INIT", events[0].command)
	assert.Equal(t, "12582912", events[0].totalBytes)
	assert.Equal(t, "video/mp4", events[0].mediaType)

	wantSizes := []int{5 * 1024 * 1024, 5 * 1024 * 1024, 2 * 1024 * 1024}
	for i, want := range wantSizes {
		ev := events[1+i]
		assert.Equal(t, "APPEND", ev.command)
		assert.Equal(t, "7777", ev.mediaID)
		assert.Equal(t, fmt.Sprint(i), ev.segmentIndex)
		assert.Equal(t, want, ev.payloadSize)
	}

	assert.Equal(t, "FINALIZE", events[4].command)
	assert.Equal(t, "STATUS", events[5].command)
	assert.Equal(t, "STATUS", events[6].command)
	assert.Equal(t, []time.Duration{defaultPollInterval, defaultPollInterval}, delays)
}

func TestUploadAppendFailureAborts(t *testing.T) {
	s := newFakeUploadServer(t)
	s.failSegment = 1
	u, done := newTestUploader(t, s)
	defer done()

	data := make([]byte, 12*1024*1024)
	_, err := u.Upload(context.Background(), data, "video/mp4")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrCodeUploadAppendFailed, apierror.Code(err))
	assert.Contains(t, err.Error(), "segment 1")

	// Segment 2 and FINALIZE must never be issued.
	events := s.recorded()
	require.Len(t, events, 3) // INIT, APPEND 0, APPEND 1
	assert.Equal(t, "APPEND", events[2].command)
	assert.Equal(t, "1", events[2].segmentIndex)
}

func TestUploadInitFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad media type"}]}`))
	}))
	defer srv.Close()

	sess := session.New("test-bearer", "test-agent")
	u := NewUploader(srv.Client(), sess, srv.URL)
	_, err := u.Upload(context.Background(), make([]byte, 10), "video/mp4")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrCodeUploadInitFailed, apierror.Code(err))
	var ce *apierror.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Body, "bad media type")
}

func TestVideoProcessingFailed(t *testing.T) {
	s := newFakeUploadServer(t)
	s.finalizeBody = `{"media_id_string":"7777","processing_info":{"state":"in_progress"}}`
	s.statusStates = []string{"failed"}
	u, done := newTestUploader(t, s)
	defer done()

	_, err := u.Upload(context.Background(), make([]byte, 1024), "video/mp4")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrCodeVideoProcessingFailed, apierror.Code(err))
}

func TestProcessingPollGivesUp(t *testing.T) {
	s := newFakeUploadServer(t)
	s.finalizeBody = `{"media_id_string":"7777","processing_info":{"state":"in_progress"}}`
	u, done := newTestUploader(t, s)
	defer done()
	u.maxPolls = 3

	_, err := u.Upload(context.Background(), make([]byte, 1024), "video/mp4")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrCodeVideoProcessingFailed, apierror.Code(err))
	assert.Contains(t, err.Error(), "3 polls")
}

func TestProcessingPollIsCancellable(t *testing.T) {
	s := newFakeUploadServer(t)
	s.finalizeBody = `{"media_id_string":"7777","processing_info":{"state":"in_progress"}}`
	u, done := newTestUploader(t, s)
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	u.sleep = func(c context.Context, _ time.Duration) error {
		polls++
		if polls == 2 {
			cancel()
		}
		return c.Err()
	}

	_, err := u.Upload(ctx, make([]byte, 1024), "video/mp4")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFinalizeWithoutProcessingInfo(t *testing.T) {
	s := newFakeUploadServer(t)
	u, done := newTestUploader(t, s)
	defer done()

	mediaID, err := u.Upload(context.Background(), make([]byte, 1024), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "7777", mediaID)
	for _, ev := range s.recorded() {
		assert.NotEqual(t, "STATUS", ev.command, "no poll when the media is immediately usable")
	}
}
