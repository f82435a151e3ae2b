package ports

import (
	"context"
	"delivery-zone-planner/internal/domain"
)

// Port: persists the output tables of a planning run.
type PlanRepository interface {
	SaveRun(ctx context.Context, run *domain.RunResult) error
}
