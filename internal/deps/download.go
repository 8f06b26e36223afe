package deps

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DownloadFunc fetches a URL into a local file.
type DownloadFunc func(url, dest string) error

// HTTPDownload is the default DownloadFunc. It writes to a temporary
// sibling first so an interrupted download never looks like a cached
// installer.
func HTTPDownload(url, dest string) error {
	client := &http.Client{Timeout: 10 * time.Minute}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	return os.Rename(tmp, dest)
}
