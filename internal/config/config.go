package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// League shape
	LeagueID     string `mapstructure:"LEAGUE_ID"`
	TeamKey      string `mapstructure:"TEAM_KEY"`
	BenchSlots   int    `mapstructure:"BENCH_SLOTS"`
	MaxILSlots   int    `mapstructure:"MAX_IL_SLOTS"`
	FreeAgentCap int    `mapstructure:"FREE_AGENT_CAP"`

	// Value model
	FuzzyThreshold    int     `mapstructure:"FUZZY_THRESHOLD"`
	UntouchableBonus  float64 `mapstructure:"UNTOUCHABLE_BONUS"`
	LowRankThreshold  int     `mapstructure:"LOW_RANK_THRESHOLD"`
	FAMaxRank         int     `mapstructure:"FA_MAX_RANK"`
	FAMinMPG          float64 `mapstructure:"FA_MIN_MPG"`
	FAMinGamesLast30  int     `mapstructure:"FA_MIN_GAMES_LAST_30"`

	// Scheduling
	DailyRunSchedule   string `mapstructure:"DAILY_RUN_SCHEDULE"`
	WeeklyMVPSchedule  string `mapstructure:"WEEKLY_MVP_SCHEDULE"`
	EnableScheduledRun bool   `mapstructure:"ENABLE_SCHEDULED_RUN"`

	// External sources
	ScoreSourceURL     string        `mapstructure:"SCORE_SOURCE_URL"`
	ScheduleSourceURL  string        `mapstructure:"SCHEDULE_SOURCE_URL"`
	MVPSourceURL       string        `mapstructure:"MVP_SOURCE_URL"`
	PlatformBaseURL    string        `mapstructure:"PLATFORM_BASE_URL"`
	PlatformTokenURL   string        `mapstructure:"PLATFORM_TOKEN_URL"`
	PlatformClientID   string        `mapstructure:"PLATFORM_CLIENT_ID"`
	PlatformSecret     string        `mapstructure:"PLATFORM_CLIENT_SECRET"`
	PlatformRefreshTok string        `mapstructure:"PLATFORM_REFRESH_TOKEN"`
	ExternalAPITimeout time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	BreakerThreshold   int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
	ScoreCacheTTL      time.Duration `mapstructure:"SCORE_CACHE_TTL"`

	// Email report
	SMTPHost      string   `mapstructure:"SMTP_HOST"`
	SMTPPort      int      `mapstructure:"SMTP_PORT"`
	SMTPUser      string   `mapstructure:"SMTP_USER"`
	SMTPPassword  string   `mapstructure:"SMTP_PASSWORD"`
	ReportFrom    string   `mapstructure:"REPORT_FROM"`
	ReportTo      []string `mapstructure:"REPORT_TO"`
	EnableEmail   bool     `mapstructure:"ENABLE_EMAIL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8084")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("LEAGUE_ID", "")
	viper.SetDefault("TEAM_KEY", "")
	viper.SetDefault("BENCH_SLOTS", 3)
	viper.SetDefault("MAX_IL_SLOTS", 3)
	viper.SetDefault("FREE_AGENT_CAP", 150)
	viper.SetDefault("FUZZY_THRESHOLD", 90)
	viper.SetDefault("UNTOUCHABLE_BONUS", 10000.0)
	viper.SetDefault("LOW_RANK_THRESHOLD", 60)
	viper.SetDefault("FA_MAX_RANK", 96)
	viper.SetDefault("FA_MIN_MPG", 28.0)
	viper.SetDefault("FA_MIN_GAMES_LAST_30", 5)
	viper.SetDefault("DAILY_RUN_SCHEDULE", "0 2 * * *")
	viper.SetDefault("WEEKLY_MVP_SCHEDULE", "0 1 * * 1")
	viper.SetDefault("ENABLE_SCHEDULED_RUN", true)
	viper.SetDefault("SCORE_SOURCE_URL", "https://basketballmonster.com/playerrankings.aspx")
	viper.SetDefault("SCHEDULE_SOURCE_URL", "https://site.api.espn.com/apis/site/v2/sports/basketball/nba/scoreboard")
	viper.SetDefault("MVP_SOURCE_URL", "")
	viper.SetDefault("PLATFORM_BASE_URL", "https://fantasysports.yahooapis.com/fantasy/v2")
	viper.SetDefault("PLATFORM_TOKEN_URL", "https://api.login.yahoo.com/oauth2/get_token")
	viper.SetDefault("PLATFORM_CLIENT_ID", "")
	viper.SetDefault("PLATFORM_CLIENT_SECRET", "")
	viper.SetDefault("PLATFORM_REFRESH_TOKEN", "")
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "30s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("SCORE_CACHE_TTL", "20h")
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("REPORT_FROM", "")
	viper.SetDefault("REPORT_TO", "")
	viper.SetDefault("ENABLE_EMAIL", false)

	viper.AutomaticEnv()

	// Missing .env is fine, environment variables and defaults apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Viper reads comma-separated lists from env as a single string
	if len(cfg.ReportTo) == 1 && strings.Contains(cfg.ReportTo[0], ",") {
		cfg.ReportTo = strings.Split(cfg.ReportTo[0], ",")
		for i := range cfg.ReportTo {
			cfg.ReportTo[i] = strings.TrimSpace(cfg.ReportTo[i])
		}
	}

	return &cfg, nil
}

// IsDevelopment returns true when running in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}
