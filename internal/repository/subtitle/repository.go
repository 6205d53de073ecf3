package subtitle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"github.com/cinesync/server/internal/domain"
)

const maxSubtitleSize = 4 << 20

// Fetcher downloads an SRT file and parses it into ordered cues. A payload
// that yields zero cues is an error: a show scheduled with an empty subtitle
// must fail validation, not silently play without subtitles.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *Fetcher) FetchCues(ctx context.Context, url string) ([]domain.SubtitleCue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSubtitleSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle body: %w", err)
	}

	subs, err := astisub.ReadFromSRT(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse srt: %w", err)
	}

	cues := make([]domain.SubtitleCue, 0, len(subs.Items))
	for i, item := range subs.Items {
		lines := make([]string, 0, len(item.Lines))
		for _, line := range item.Lines {
			lines = append(lines, line.String())
		}

		cues = append(cues, domain.SubtitleCue{
			Id:        i + 1,
			StartTime: formatTimestamp(item.StartAt),
			EndTime:   formatTimestamp(item.EndAt),
			Text:      strings.Join(lines, "\n"),
		})
	}

	if len(cues) == 0 {
		return nil, ErrNoCues
	}

	return cues, nil
}

// formatTimestamp renders a duration in the SRT "HH:MM:SS,mmm" form.
func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	millis := d / time.Millisecond

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
