package services

import (
	"delivery-zone-planner/internal/domain"
	"fmt"
)

// BatchParams bounds how many customers one vehicle serves.
type BatchParams struct {
	MinSize int `yaml:"min_size"`
	MaxSize int `yaml:"max_size"`
}

func DefaultBatchParams() BatchParams {
	return BatchParams{MinSize: 3, MaxSize: 8}
}

// SplitIntoBatches chunks ids into runs of MaxSize. A final chunk shorter than
// MinSize is folded into the previous one, so that batch may hold up to
// MaxSize+MinSize-1 customers. When there is no previous chunk the short list
// is returned as a single batch.
func SplitIntoBatches(ids []string, p BatchParams) ([][]string, error) {
	if p.MaxSize < 1 {
		return nil, fmt.Errorf("split into batches: max size must be at least 1, got %d", p.MaxSize)
	}
	if p.MinSize < 1 || p.MinSize > p.MaxSize {
		return nil, fmt.Errorf("split into batches: min size %d must be in [1, %d]", p.MinSize, p.MaxSize)
	}

	var batches [][]string
	for i := 0; i < len(ids); {
		end := i + p.MaxSize
		if end >= len(ids) {
			tail := append([]string(nil), ids[i:]...)
			if len(tail) < p.MinSize && len(batches) > 0 {
				batches[len(batches)-1] = append(batches[len(batches)-1], tail...)
			} else {
				batches = append(batches, tail)
			}
			break
		}
		batches = append(batches, append([]string(nil), ids[i:end]...))
		i = end
	}
	return batches, nil
}

// BatchGroup splits one demand group into vehicle batches tagged with their
// vehicle identifiers.
func BatchGroup(g domain.DemandGroup, p BatchParams) ([]domain.VehicleBatch, error) {
	chunks, err := SplitIntoBatches(g.CustomerIDs, p)
	if err != nil {
		return nil, fmt.Errorf("batch group %s %s: %w", g.Date.Format(domain.DateLayout), g.Zone.Code(), err)
	}

	out := make([]domain.VehicleBatch, 0, len(chunks))
	for i, ids := range chunks {
		out = append(out, domain.VehicleBatch{
			VehicleID:   VehicleID(g, i),
			Date:        g.Date,
			Zone:        g.Zone,
			Index:       i,
			CustomerIDs: ids,
		})
	}
	return out, nil
}

// VehicleID formats the synthetic vehicle identifier, e.g. V2025-03-04_C0_1_N2.
func VehicleID(g domain.DemandGroup, index int) string {
	return fmt.Sprintf("V%s_C%s_N%d", g.Date.Format(domain.DateLayout), g.Zone.Code(), index+1)
}
