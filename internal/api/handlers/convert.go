package handlers

import (
	"delivery-zone-planner/internal/api/dto"
	"delivery-zone-planner/internal/domain"
	"time"
)

func date(t time.Time) string { return t.Format(domain.DateLayout) }

func toPlanResponse(run *domain.RunResult) dto.PlanResponse {
	res := dto.PlanResponse{
		RunID:        run.RunID,
		Assignments:  make([]dto.AssignmentResponse, 0, len(run.Assignments)),
		DeliveryPlan: toGroups(run.Schedule.Groups),
		Excluded:     toGroups(run.Schedule.Excluded),
		Rescheduled:  toOrphans(run.Schedule.Rescheduled),
		Dropped:      toOrphans(run.Schedule.Dropped),
		Routes:       make([]dto.RouteResponse, 0, len(run.Routes)),
		Daily:        make([]dto.DailySummaryResponse, 0, len(run.Daily)),
		Rejected:     make([]dto.RejectedResponse, 0, len(run.Rejected)),
	}

	for _, a := range run.Assignments {
		ar := dto.AssignmentResponse{
			CustomerID: a.CustomerID,
			Cluster:    domain.RawLabel(a.Raw),
			Zone:       a.Zone.Code(),
			FinalZone:  a.Final.Code(),
			ZoneLabel:  a.Final.Label(),
			Reassigned: a.Reassigned,
		}
		if a.Raw == domain.Noise {
			density, dist := a.LocalDensity, a.NearestDistance
			ar.LocalDensity = &density
			if dist >= 0 {
				ar.NearestDistance = &dist
			}
		}
		res.Assignments = append(res.Assignments, ar)
	}

	for _, rt := range run.Routes {
		res.Routes = append(res.Routes, dto.RouteResponse{
			VehicleID:      rt.Batch.VehicleID,
			Date:           date(rt.Batch.Date),
			Zone:           rt.Batch.Zone.Code(),
			Stops:          rt.Tour.CustomerIDs,
			DistanceKm:     rt.Tour.DistanceKm,
			DrivingMinutes: rt.Time.DrivingMinutes,
			TotalMinutes:   rt.Time.TotalMinutes,
		})
	}

	for _, d := range run.Daily {
		res.Daily = append(res.Daily, dto.DailySummaryResponse{
			Date:         date(d.Date),
			ZonesServed:  d.ZonesServed,
			Customers:    d.Customers,
			Vehicles:     d.Vehicles,
			DistanceKm:   d.DistanceKm,
			TotalMinutes: d.TotalMinutes,
		})
	}

	for _, rj := range run.Rejected {
		res.Rejected = append(res.Rejected, dto.RejectedResponse{
			CustomerID: rj.CustomerID,
			Latitude:   rj.Lat,
			Longitude:  rj.Lon,
			Reason:     rj.Reason,
		})
	}

	d := run.Diagnostics
	res.Diagnostics = dto.DiagnosticsResponse{
		Rejected:          d.Rejected,
		Clusters:          d.Clusters,
		NoisePoints:       d.NoisePoints,
		Reassigned:        d.Reassigned,
		ExcludedGroups:    d.ExcludedGroups,
		RescheduledOrders: d.RescheduledOrders,
		DroppedOrders:     d.DroppedOrders,
		Vehicles:          d.Vehicles,
		Unzoned:           append([]string{}, run.Schedule.Unzoned...),
	}
	if d.Quality.Computable {
		s := d.Quality.Silhouette
		res.Diagnostics.Silhouette = &s
	}

	return res
}

func toGroups(groups []domain.DemandGroup) []dto.DeliveryGroupResponse {
	out := make([]dto.DeliveryGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.DeliveryGroupResponse{
			Date:        date(g.Date),
			Zone:        g.Zone.Code(),
			CustomerIDs: g.CustomerIDs,
		})
	}
	return out
}

func toOrphans(orphans []domain.Orphan) []dto.OrphanResponse {
	out := make([]dto.OrphanResponse, 0, len(orphans))
	for _, o := range orphans {
		or := dto.OrphanResponse{
			CustomerID:   o.CustomerID,
			Zone:         o.Zone.Code(),
			OriginalDate: date(o.OriginalDate),
		}
		if o.NewDate != nil {
			nd := date(*o.NewDate)
			or.NewDate = &nd
		}
		out = append(out, or)
	}
	return out
}
