package config

import (
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/services"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvPlannerConfig = "PLANNER_CONFIG"

	EnvEps             = "PLANNER_EPS"
	EnvMinPts          = "PLANNER_MIN_PTS"
	EnvSubclusters     = "PLANNER_SUBCLUSTERS"
	EnvSplitLargest    = "PLANNER_SPLIT_LARGEST"
	EnvRepairDistance  = "PLANNER_REPAIR_DISTANCE"
	EnvRepairDensity   = "PLANNER_REPAIR_DENSITY"
	EnvDensityRadiusKm = "PLANNER_DENSITY_RADIUS_KM"
	EnvMinGroup        = "PLANNER_MIN_GROUP"
	EnvToleranceDays   = "PLANNER_TOLERANCE_DAYS"
	EnvOrphanPolicy    = "PLANNER_ORPHAN_POLICY"
	EnvMinBatch        = "PLANNER_MIN_BATCH"
	EnvMaxBatch        = "PLANNER_MAX_BATCH"
	EnvSpeedKmh        = "PLANNER_SPEED_KMH"
	EnvServiceMinutes  = "PLANNER_SERVICE_MINUTES"
	EnvWorkers         = "PLANNER_WORKERS"
	EnvBBoxMinLat      = "PLANNER_BBOX_MIN_LAT"
	EnvBBoxMaxLat      = "PLANNER_BBOX_MAX_LAT"
	EnvBBoxMinLon      = "PLANNER_BBOX_MIN_LON"
	EnvBBoxMaxLon      = "PLANNER_BBOX_MAX_LON"
)

// Planner holds every tunable of a planning run.
type Planner struct {
	Bounds     domain.BoundingBox      `yaml:"bounds"`
	Clustering services.ClusterParams  `yaml:"clustering"`
	Repair     services.RepairParams   `yaml:"repair"`
	Schedule   services.ScheduleParams `yaml:"schedule"`
	Batching   services.BatchParams    `yaml:"batching"`
	Timing     services.TimeParams     `yaml:"timing"`
	Workers    int                     `yaml:"workers"`
}

// Default returns the parameters of the reference deployment.
func Default() Planner {
	return Planner{
		Bounds:     domain.BoundingBox{MinLat: 36.0, MaxLat: 47.0, MinLon: 6.0, MaxLon: 18.0},
		Clustering: services.DefaultClusterParams(),
		Repair:     services.DefaultRepairParams(),
		Schedule:   services.DefaultScheduleParams(),
		Batching:   services.DefaultBatchParams(),
		Timing:     services.DefaultTimeParams(),
		Workers:    4,
	}
}

// Load applies, in order: defaults, the optional YAML file named by
// PLANNER_CONFIG, and PLANNER_* environment overrides.
func Load() (*Planner, error) {
	cfg := Default()

	if path := Get(EnvPlannerConfig, ""); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Options converts the configuration into pipeline options.
func (c *Planner) Options() services.Options {
	return services.Options{
		Bounds:     c.Bounds,
		Clustering: c.Clustering,
		Repair:     c.Repair,
		Schedule:   c.Schedule,
		Batching:   c.Batching,
		Timing:     c.Timing,
		Workers:    c.Workers,
	}
}

func loadFile(path string, cfg *Planner) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("load config: parse %q: %w", path, err)
	}

	return nil
}

func (c *Planner) loadEnv() error {
	var err error
	floats := []struct {
		key string
		dst *float64
	}{
		{EnvEps, &c.Clustering.Eps},
		{EnvRepairDistance, &c.Repair.DistanceThreshold},
		{EnvDensityRadiusKm, &c.Repair.DensityRadiusKm},
		{EnvSpeedKmh, &c.Timing.SpeedKmh},
		{EnvServiceMinutes, &c.Timing.ServiceMinutes},
		{EnvBBoxMinLat, &c.Bounds.MinLat},
		{EnvBBoxMaxLat, &c.Bounds.MaxLat},
		{EnvBBoxMinLon, &c.Bounds.MinLon},
		{EnvBBoxMaxLon, &c.Bounds.MaxLon},
	}
	for _, f := range floats {
		if *f.dst, err = GetFloat(f.key, *f.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvMinPts, &c.Clustering.MinPts},
		{EnvSubclusters, &c.Clustering.Subclusters},
		{EnvSplitLargest, &c.Clustering.SplitLargest},
		{EnvRepairDensity, &c.Repair.DensityThreshold},
		{EnvMinGroup, &c.Schedule.MinGroupSize},
		{EnvToleranceDays, &c.Schedule.ToleranceDays},
		{EnvMinBatch, &c.Batching.MinSize},
		{EnvMaxBatch, &c.Batching.MaxSize},
		{EnvWorkers, &c.Workers},
	}
	for _, i := range ints {
		if *i.dst, err = GetInt(i.key, *i.dst); err != nil {
			return err
		}
	}

	if v := Get(EnvOrphanPolicy, ""); v != "" {
		c.Schedule.OrphanPolicy = services.OrphanPolicy(strings.ToLower(v))
	}

	return nil
}

// Validate checks every parameter and reports all problems at once.
func (c *Planner) Validate() error {
	var errs []string

	b := c.Bounds
	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		errs = append(errs, "bounds: min must be below max")
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLon < -180 || b.MaxLon > 180 {
		errs = append(errs, "bounds: outside valid latitude/longitude range")
	}
	if c.Clustering.Eps <= 0 {
		errs = append(errs, "clustering.eps must be positive")
	}
	if c.Clustering.MinPts < 1 {
		errs = append(errs, "clustering.min_pts must be at least 1")
	}
	if c.Clustering.Subclusters < 1 {
		errs = append(errs, "clustering.subclusters must be at least 1")
	}
	if c.Clustering.SplitLargest < 0 {
		errs = append(errs, "clustering.split_largest must not be negative")
	}
	if c.Repair.DistanceThreshold <= 0 {
		errs = append(errs, "repair.distance_threshold must be positive")
	}
	if c.Repair.DensityThreshold < 1 {
		errs = append(errs, "repair.density_threshold must be at least 1")
	}
	if c.Repair.DensityRadiusKm <= 0 {
		errs = append(errs, "repair.density_radius_km must be positive")
	}
	if c.Schedule.MinGroupSize < 1 {
		errs = append(errs, "schedule.min_group_size must be at least 1")
	}
	if c.Schedule.ToleranceDays < 0 {
		errs = append(errs, "schedule.tolerance_days must not be negative")
	}
	if !c.Schedule.OrphanPolicy.Valid() {
		errs = append(errs, fmt.Sprintf("schedule.orphan_policy must be %q or %q, got %q",
			services.OrphanSkip, services.OrphanNearest, c.Schedule.OrphanPolicy))
	}
	if c.Batching.MinSize < 1 || c.Batching.MaxSize < c.Batching.MinSize {
		errs = append(errs, "batching: need 1 <= min_size <= max_size")
	}
	if c.Timing.SpeedKmh <= 0 {
		errs = append(errs, "timing.speed_kmh must be positive")
	}
	if c.Timing.ServiceMinutes < 0 {
		errs = append(errs, "timing.service_minutes must not be negative")
	}
	if c.Workers < 1 {
		errs = append(errs, "workers must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
