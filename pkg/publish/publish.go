// package publish pushes rendered reports to their external destinations:
// an scp target for the HTML page and a Mastodon status announcing it.
// Publishing is best-effort plumbing; failures are logged, never fatal.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// announceTimeout bounds the Mastodon API call.
const announceTimeout = 30 * time.Second

// Config selects where reports are published. An empty field disables that
// destination.
type Config struct {
	// UploadDest is the scp destination for the HTML report, for example
	// "user@host:/var/www/highlights/".
	UploadDest string `yaml:"upload-dest"`

	// MastodonServer is the base URL of the Mastodon instance to announce
	// on. The access token comes from the environment, never from config.
	MastodonServer string `yaml:"mastodon-server"`

	// ReportBaseURL is the public URL prefix where uploaded reports are
	// reachable.
	ReportBaseURL string `yaml:"report-base-url"`
}

// Publisher uploads and announces finished reports.
type Publisher struct {
	logger        *zap.SugaredLogger
	config        Config
	mastodonToken string
	httpClient    *http.Client
}

// New returns a Publisher for the given destinations. mastodonToken may be
// empty, which disables the announcement.
func New(config Config, mastodonToken string, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{
		logger:        logger,
		config:        config,
		mastodonToken: mastodonToken,
		httpClient:    &http.Client{Timeout: announceTimeout},
	}
}

// Publish uploads the HTML report and, if the upload succeeded, announces
// it. Each step is skipped when unconfigured and logged on failure.
func (p *Publisher) Publish(ctx context.Context, htmlPath string) {
	if p.config.UploadDest == "" {
		p.logger.Debugf("no upload destination configured, skipping publish")
		return
	}

	if err := p.Upload(ctx, htmlPath); err != nil {
		p.logger.Errorf("failed to upload report: %s", err.Error())
		return
	}
	p.logger.Infof("uploaded %s to %s", filepath.Base(htmlPath), p.config.UploadDest)

	if err := p.Announce(ctx, filepath.Base(htmlPath)); err != nil {
		p.logger.Errorf("failed to post announcement: %s", err.Error())
		return
	}
	p.logger.Infof("announcement posted")
}

// Upload copies the HTML report to the configured scp destination.
func (p *Publisher) Upload(ctx context.Context, htmlPath string) error {
	cmd := exec.CommandContext(ctx, "scp", htmlPath, p.config.UploadDest)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("scp failed: %s: %s", err.Error(), strings.TrimSpace(string(output)))
	}
	return nil
}

// Announce posts a Mastodon status linking to the uploaded report.
func (p *Publisher) Announce(ctx context.Context, htmlName string) error {
	if p.config.MastodonServer == "" || p.mastodonToken == "" {
		return nil
	}

	reportURL := strings.TrimSuffix(p.config.ReportBaseURL, "/") + "/" + htmlName
	status := fmt.Sprintf("This week's ASF community highlights: %s", reportURL)

	form := url.Values{}
	form.Set("status", status)

	endpoint := strings.TrimSuffix(p.config.MastodonServer, "/") + "/api/v1/statuses"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("could not build status request: %s", err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+p.mastodonToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not post status: %s", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status post rejected with %s", resp.Status)
	}
	return nil
}
