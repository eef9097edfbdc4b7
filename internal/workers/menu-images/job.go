// internal/workers/menu-images/job.go
package menuimages

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"campus-notifier/internal/common/errors"
	commonhttp "campus-notifier/internal/common/http"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/common/metrics"
)

const fallbackContentType = "image/png"

// Bucket is the slice of Cloud Storage the job needs.
type Bucket interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
	Upload(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error
	MakePublic(ctx context.Context, name string) error
}

// Job clears the menu prefix and repopulates it from the menu page.
type Job struct {
	config     *Config
	bucket     Bucket
	classifier *Classifier
	page       *commonhttp.Client
	download   *commonhttp.Client
	now        func() time.Time
	logger     logger.Logger
}

func NewJob(config *Config, bucket Bucket, log logger.Logger) (*Job, error) {
	classifier, err := NewClassifier(config.Patterns)
	if err != nil {
		return nil, fmt.Errorf("menu patterns: %w", err)
	}

	return &Job{
		config:     config,
		bucket:     bucket,
		classifier: classifier,
		page:       commonhttp.NewClient(config.PageTimeout),
		download:   commonhttp.NewClient(config.DownloadTimeout),
		now:        time.Now,
		logger:     log.WithFields(map[string]interface{}{"job": TaskType}),
	}, nil
}

// Run satisfies trigger.Job.
func (j *Job) Run(ctx context.Context) (interface{}, error) {
	summary, err := j.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Refresh runs one clear-scrape-upload cycle. Clear and scrape failures are
// returned; per-image failures are counted in the summary.
func (j *Job) Refresh(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	cleared, err := j.clear(ctx)
	if err != nil {
		return nil, err
	}
	summary.Cleared = cleared

	urls, err := j.scrape(ctx)
	if err != nil {
		return nil, err
	}

	uploaded := make(map[string]bool)
	for _, u := range urls {
		name, ok := j.classifier.Classify(u)
		if !ok {
			j.logger.Warn("menu image matches no pattern, skipped", map[string]interface{}{"url": u})
			summary.Skipped++
			metrics.MenuImages.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}
		summary.Found++
		if uploaded[name] {
			j.logger.Info("duplicate menu image, skipped", map[string]interface{}{
				"url":  u,
				"name": name,
			})
			summary.Skipped++
			metrics.MenuImages.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}

		if err := j.process(ctx, u, name); err != nil {
			j.logger.Error("menu image failed", map[string]interface{}{
				"url":       u,
				"name":      name,
				"errorCode": string(errors.Normalize(err).Code),
				"error":     err,
			})
			summary.Failed++
			metrics.MenuImages.WithLabelValues(metrics.OutcomeFailure).Inc()
			continue
		}
		uploaded[name] = true
		summary.Uploaded++
		metrics.MenuImages.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}

	if summary.Found == 0 {
		j.logger.Warn("no menu images found on page", map[string]interface{}{
			"pageUrl":    j.config.PageURL,
			"candidates": len(urls),
		})
	}

	j.logger.Info("menu images refreshed", map[string]interface{}{
		"cleared":  summary.Cleared,
		"found":    summary.Found,
		"uploaded": summary.Uploaded,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	})
	return summary, nil
}

// clear deletes everything under the prefix and waits for every deletion.
func (j *Job) clear(ctx context.Context) (int, error) {
	names, err := j.bucket.List(ctx, j.config.Prefix)
	if err != nil {
		return 0, errors.NewStorageOperationFailedError("list", j.config.Prefix, err)
	}
	if len(names) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := j.config.ClearConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, name := range names {
		g.Go(func() error {
			if err := j.bucket.Delete(gctx, name); err != nil {
				return errors.NewStorageOperationFailedError("delete", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	j.logger.Info("menu prefix cleared", map[string]interface{}{
		"prefix":  j.config.Prefix,
		"objects": len(names),
	})
	return len(names), nil
}

func (j *Job) scrape(ctx context.Context) ([]string, error) {
	if j.config.PageURL == "" {
		return nil, errors.NewMenuScrapeFailedError("", fmt.Errorf("menu page url is not configured"))
	}

	resp, err := j.page.Get(ctx, j.config.PageURL, j.config.MaxPageBytes)
	if err != nil {
		return nil, errors.NewMenuScrapeFailedError(j.config.PageURL, err)
	}
	if !resp.OK() {
		return nil, errors.NewMenuScrapeFailedError(j.config.PageURL, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.Truncated {
		return nil, errors.NewMenuScrapeFailedError(j.config.PageURL, fmt.Errorf("page exceeds %d bytes", j.config.MaxPageBytes))
	}

	urls, err := ExtractMenuImages(j.config.PageURL, bytes.NewReader(resp.Body))
	if err != nil {
		return nil, errors.NewMenuScrapeFailedError(j.config.PageURL, err)
	}
	return urls, nil
}

func (j *Job) process(ctx context.Context, remoteURL, name string) error {
	resp, err := j.download.Get(ctx, remoteURL, j.config.MaxImageBytes)
	if err != nil {
		return errors.NewImageDownloadFailedError(remoteURL, err)
	}
	if !resp.OK() {
		return errors.NewImageDownloadFailedError(remoteURL, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.Truncated {
		return errors.NewImageDownloadFailedError(remoteURL, fmt.Errorf("image exceeds %d bytes", j.config.MaxImageBytes))
	}

	asset := Asset{
		RemoteURL:     remoteURL,
		CanonicalName: name,
		ContentType:   contentType(resp.Header.Get("Content-Type"), resp.Body),
		Bytes:         resp.Body,
	}

	object := path.Join(strings.TrimSuffix(j.config.Prefix, "/"), asset.CanonicalName)
	metadata := map[string]string{
		"originalUrl": asset.RemoteURL,
		"uploadedAt":  j.now().UTC().Format(time.RFC3339),
	}
	if err := j.bucket.Upload(ctx, object, asset.Bytes, asset.ContentType, metadata); err != nil {
		return errors.NewStorageOperationFailedError("upload", object, err)
	}
	if err := j.bucket.MakePublic(ctx, object); err != nil {
		return errors.NewStorageOperationFailedError("acl", object, err)
	}

	j.logger.Info("menu image uploaded", map[string]interface{}{
		"object":      object,
		"url":         remoteURL,
		"bytes":       len(asset.Bytes),
		"contentType": asset.ContentType,
	})
	return nil
}

// contentType prefers the server's image/* header, then sniffs the bytes.
func contentType(header string, data []byte) string {
	if ct := strings.TrimSpace(strings.SplitN(header, ";", 2)[0]); strings.HasPrefix(ct, "image/") {
		return ct
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return fallbackContentType
}
