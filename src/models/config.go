package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Timezone string         `yaml:"timezone"`
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Sources  MSourcesConfig `yaml:"sources"`
	Notify   MNotifyConfig  `yaml:"notify"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	FallbackFile       string `yaml:"fallback_file"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MSourcesConfig struct {
	SpotURL          string  `yaml:"spot_url"`
	ForexURL         string  `yaml:"forex_url"`
	ForexFallbackURL string  `yaml:"forex_fallback_url"`
	LocalMarketURL   string  `yaml:"local_market_url"`
	LocalHistoryURL  string  `yaml:"local_history_url"`
	HistoryYears     int     `yaml:"history_years"`
	MarketMarkup     float64 `yaml:"market_markup"`
	LocalPremium     float64 `yaml:"local_premium"`
}

type MNotifyConfig struct {
	Enabled                bool    `yaml:"enabled"`
	SendDelayMs            int     `yaml:"send_delay_ms"`
	MinCorrectionDelta     float64 `yaml:"min_correction_delta"`
	RefreshIntervalMinutes int     `yaml:"refresh_interval_minutes"`
	MailEndpoint           string  `yaml:"mail_endpoint"`
	MailAPIKey             string  `yaml:"mail_api_key"`
	MailFrom               string  `yaml:"mail_from"`
}
