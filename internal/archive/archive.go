// Package archive keeps a copy of every uploaded workbook on the local
// filesystem or in an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/controltower/internal/config"
	"github.com/JonMunkholm/controltower/internal/core"
)

// Drivers accepted by New.
const (
	DriverNone = "none"
	DriverFS   = "fs"
	DriverS3   = "s3"
)

// New builds the archiver selected by cfg.Driver. The none driver returns a
// nil archiver, which disables archiving.
func New(ctx context.Context, cfg config.ArchiveConfig) (core.Archiver, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverNone:
		return nil, nil
	case DriverFS:
		a, err := NewFS(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return a, nil
	case DriverS3:
		a, err := NewS3(ctx, S3Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			PathStyle:       cfg.UsePathStyle,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", cfg.Driver)
	}
}
