package events

// Config holds configuration for the synchronization feature.
type Config struct {
	// RootID is the repository node whose descendants are kept in scope.
	RootID string `mapstructure:"root_id" default:""`
	// IntervalSeconds is the scheduler tick interval.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"60"`
	// RetentionDays is the retention window added to a document's creation
	// date to derive its expiration date.
	RetentionDays int `mapstructure:"retention_days" default:"90"`
	// SchedulerEnabled toggles the periodic synchronization loop.
	SchedulerEnabled bool `mapstructure:"scheduler_enabled" default:"true"`
}
