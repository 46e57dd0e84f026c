package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// downloadMaxElapsed bounds the total time spent retrying one download.
const downloadMaxElapsed = 30 * time.Second

// Download streams url into destPath, rejecting payloads larger than
// maxBytes with ErrTooLarge. Transient transport failures and 5xx statuses
// are retried with exponential backoff; oversize payloads and client errors
// are not.
func Download(ctx context.Context, client *http.Client, url, destPath string, maxBytes int64) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = downloadMaxElapsed
	operation := func() error {
		return downloadOnce(ctx, client, url, destPath, maxBytes)
	}
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}

func downloadOnce(ctx context.Context, client *http.Client, url, destPath string, maxBytes int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build download request: %w", err))
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("download media: status %d", resp.StatusCode)
		if resp.StatusCode >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}
	if resp.ContentLength > maxBytes {
		return backoff.Permanent(fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength))
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create download file: %w", err))
	}
	defer dest.Close()

	// Read one byte past the cap so an oversize body is detected even when
	// the server omits Content-Length.
	limited := &io.LimitedReader{R: resp.Body, N: maxBytes + 1}
	written, err := io.Copy(dest, limited)
	if err != nil {
		return fmt.Errorf("write download file: %w", err)
	}
	if written > maxBytes {
		return backoff.Permanent(fmt.Errorf("%w: max %d bytes", ErrTooLarge, maxBytes))
	}
	return nil
}
