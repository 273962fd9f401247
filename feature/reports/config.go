package reports

// Config holds configuration for the reporting feature.
type Config struct {
	// ArchivePrefix is the object key prefix archives are written under.
	ArchivePrefix string `mapstructure:"archive_prefix" default:"reports"`
	// ArchiveEnabled toggles report archival to object storage.
	ArchiveEnabled bool `mapstructure:"archive_enabled" default:"true"`
}
