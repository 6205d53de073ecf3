package subtitle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:04,000
I've seen things you people wouldn't believe.

2
00:01:10,500 --> 00:01:13,000
Attack ships on fire off the shoulder of Orion.
`

func TestFetchCuesParsesSRT(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleSRT))
	}))
	defer srv.Close()

	cues, err := NewFetcher(5*time.Second).FetchCues(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, cues, 2)

	require.Equal(t, 1, cues[0].Id)
	require.Equal(t, "00:00:01,000", cues[0].StartTime)
	require.Equal(t, "00:00:04,000", cues[0].EndTime)
	require.Equal(t, "I've seen things you people wouldn't believe.", cues[0].Text)

	require.Equal(t, 2, cues[1].Id)
	require.Equal(t, "00:01:10,500", cues[1].StartTime)
}

func TestFetchCuesRejectsEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\n"))
	}))
	defer srv.Close()

	_, err := NewFetcher(5*time.Second).FetchCues(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestFetchCuesRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(5*time.Second).FetchCues(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestFormatTimestamp(t *testing.T) {
	require.Equal(t, "01:02:03,456", formatTimestamp(time.Hour+2*time.Minute+3*time.Second+456*time.Millisecond))
	require.Equal(t, "00:00:00,000", formatTimestamp(-time.Second))
}
