// Package database provides the data access layer for video records and the request audit log.
package database

import (
	"context"
	"fmt"

	"github.com/factchecker/factlens/internal/config"
	"github.com/factchecker/factlens/internal/models"
)

// Store defines the interface for data persistence.
type Store interface {
	// Videos
	SaveVideo(ctx context.Context, video *models.Video) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	ListVideos(ctx context.Context, limit, offset int) ([]*models.Video, error)

	// Audit logs
	LogRequest(ctx context.Context, log *models.AuditLog) error
	GetAuditLogs(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)

	// Lifecycle
	Close() error
	Migrate() error
}

// Open creates the store selected in the configuration.
func Open(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
