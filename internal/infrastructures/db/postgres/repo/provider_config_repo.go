package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/models"
)

func (r *Repository) ActiveProviderConfig(ctx context.Context) (models.ProviderConfig, error) {
	const query = `
		SELECT
			name,
			base_url,
			api_key,
			enabled,
			is_active
		FROM provider_configs
		WHERE is_active AND enabled
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var cfg models.ProviderConfig
	err := r.db.QueryRow(ctx, query).Scan(
		&cfg.Name,
		&cfg.BaseURL,
		&cfg.APIKey,
		&cfg.Enabled,
		&cfg.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ProviderConfig{}, derr.ErrProviderConfigNotFound
		}
		return models.ProviderConfig{}, fmt.Errorf("query active provider config: %w", err)
	}

	return cfg, nil
}
