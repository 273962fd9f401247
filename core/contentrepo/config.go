package contentrepo

// Config holds configuration for the content repository search API.
type Config struct {
	// BaseURL is the repository base URL, e.g. http://localhost:8080/alfresco.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:8080/alfresco"`
	// Username for basic authentication.
	Username string `mapstructure:"username" default:"admin"`
	// Password for basic authentication.
	Password string `mapstructure:"password" default:"admin"`
	// MaxItems bounds a single search page. The search is issued as one page;
	// documents beyond the bound are not returned.
	MaxItems int `mapstructure:"max_items" default:"1000"`
	// TimeoutSeconds is the HTTP timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
