// Package storage publishes rendered reports to object storage or disk.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bryanwahyu/achalasia-report/internal/config"
	"github.com/bryanwahyu/achalasia-report/internal/domain/report"
)

const (
	DriverNone  = "none"
	DriverLocal = "local"
	DriverMinio = "minio"
	DriverAzure = "azure"
)

// Store is a report publisher that can also report its own health.
type Store interface {
	report.Publisher
	Check(ctx context.Context) error
}

// New builds the store selected by cfg.Storage.Driver. It returns a nil Store
// when publishing is turned off.
func New(ctx context.Context, cfg *config.Config) (Store, string, error) {
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	switch driver {
	case "", DriverNone:
		return nil, DriverNone, nil
	case DriverLocal:
		s, err := NewLocal(sc.Local.Dir, sc.Local.BaseURL)
		if err != nil {
			return nil, driver, err
		}
		return s, driver, nil
	case DriverMinio:
		s, err := NewMinio(ctx, sc.Minio.Endpoint, sc.Minio.Region, sc.Minio.BucketName, sc.Minio.AccessKey, sc.Minio.SecretKey, sc.Minio.UseSSL)
		if err != nil {
			return nil, driver, err
		}
		return s, driver, nil
	case DriverAzure:
		s, err := NewAzure(ctx, sc.Azure.ConnectionString, sc.Azure.AccountName, sc.Azure.AccountKey, sc.Azure.Container)
		if err != nil {
			return nil, driver, err
		}
		return s, driver, nil
	default:
		return nil, driver, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

func contentDisposition(key string) string {
	return fmt.Sprintf("attachment; filename=%q", path.Base(key))
}
