package ports

import (
	"context"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

// RawRecord is a single provider-native match payload before normalization.
type RawRecord interface {
	RecordID() int64
}

type Provider interface {
	Kind() models.ProviderKind
	FetchWindow(ctx context.Context, from, to time.Time, competition string) ([]RawRecord, error)
	FetchLive(ctx context.Context) ([]RawRecord, error)
	FetchByID(ctx context.Context, id models.MatchID) (RawRecord, error)
	Transform(raw RawRecord, now time.Time) (models.Match, error)
}

type ProviderConfigReader interface {
	ActiveProviderConfig(ctx context.Context) (models.ProviderConfig, error)
}

type VoteTallyReader interface {
	VoteTallies(ctx context.Context, ids []models.MatchID) (map[models.MatchID]models.VoteTally, error)
}

type SnapshotRepository interface {
	UpsertSnapshots(ctx context.Context, matches []models.Match) error
}

type SnapshotQueue interface {
	Enqueue(matches []models.Match)
}

// ProviderFactory builds adapters that share one guard per provider kind for the life of the process.
type ProviderFactory interface {
	Build(kind models.ProviderKind, cfg models.ProviderConfig) Provider
	Suspended(kind models.ProviderKind) (bool, time.Time)
}
