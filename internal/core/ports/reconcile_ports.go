package ports

import (
	"context"

	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

type ReconcileService interface {
	ReconcilePolls(ctx context.Context, pollIDs []string) ([]domain.OptionDrift, error)
}
