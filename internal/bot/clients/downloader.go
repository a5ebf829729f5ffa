package clients

import (
	"context"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"go.uber.org/multierr"

	"github.com/central-university-dev/go-vacation-bot/internal/common/httputil"
	"github.com/central-university-dev/go-vacation-bot/internal/config"
	customerrors "github.com/central-university-dev/go-vacation-bot/internal/domain/errors"
)

// Downloader fetches uploaded files through the resilient client and falls back to the plain one.
type Downloader struct {
	primary   *resty.Client
	secondary *resty.Client
	logger    *slog.Logger
}

func NewDownloader(cfg *config.Config, logger *slog.Logger) *Downloader {
	return NewDownloaderWithClients(
		httputil.CreateResilientHTTPClient(cfg, logger, "file_download"),
		httputil.CreatePlainHTTPClient(cfg.DownloadTimeout, logger, "file_download_fallback"),
		logger,
	)
}

func NewDownloaderWithClients(primary, secondary *resty.Client, logger *slog.Logger) *Downloader {
	return &Downloader{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	body, primaryErr := fetch(ctx, d.primary, url)
	if primaryErr == nil {
		return body, nil
	}

	if d.secondary == nil {
		return nil, &customerrors.ErrDownloadFailed{URL: url, Cause: primaryErr}
	}

	d.logger.Warn("Основной клиент не смог скачать файл, пробуем резервный",
		"error", primaryErr,
		"url", url,
	)

	body, secondaryErr := fetch(ctx, d.secondary, url)
	if secondaryErr != nil {
		return nil, &customerrors.ErrDownloadFailed{URL: url, Cause: multierr.Combine(primaryErr, secondaryErr)}
	}

	return body, nil
}

func fetch(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return resp.Body(), nil
}
