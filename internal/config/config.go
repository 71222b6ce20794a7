package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "SOURCE_VERIFIER_CONFIG"
	listenAddrEnv         = "LISTEN_ADDR"
	databaseDSNEnv        = "DATABASE_DSN"
	archiveAPIKeyEnv      = "ARCHIVE_API_KEY"
	reputationEndpointEnv = "REPUTATION_ENDPOINT"
	reputationAPIKeyEnv   = "REPUTATION_API_KEY"
	trustedDomainsEnv     = "TRUSTED_DOMAINS"
	logLevelEnv           = "LOG_LEVEL"
	logFormatEnv          = "LOG_FORMAT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Trust      TrustConfig      `yaml:"trust"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Reputation ReputationConfig `yaml:"reputation"`
	Cache      CacheConfig      `yaml:"cache"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// LoggingConfig controls slog verbosity and output format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// FetcherConfig bounds outbound page retrieval.
type FetcherConfig struct {
	TimeoutSeconds    int   `yaml:"timeoutSeconds"`
	MaxRedirects      int   `yaml:"maxRedirects"`
	MaxBodyBytes      int64 `yaml:"maxBodyBytes"`
	RequestsPerSecond int   `yaml:"requestsPerSecond"`
}

// Timeout resolves the request timeout as a duration.
func (f FetcherConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// TrustConfig lists domains considered reputable ahead of content analysis.
type TrustConfig struct {
	TrustedDomains []string `yaml:"trustedDomains"`
}

// ArchiveConfig wires the snapshot service. An empty API key disables
// archiving entirely.
type ArchiveConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the archival timeout as a duration.
func (a ArchiveConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ReputationConfig wires the external reputation service.
type ReputationConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// CacheConfig sets per-namespace time-to-live values.
type CacheConfig struct {
	VerificationTTLMinutes int `yaml:"verificationTTLMinutes"`
	ListingTTLMinutes      int `yaml:"listingTTLMinutes"`
	StatsTTLMinutes        int `yaml:"statsTTLMinutes"`
}

// VerificationTTL resolves the verification-entry lifetime.
func (c CacheConfig) VerificationTTL() time.Duration {
	return time.Duration(c.VerificationTTLMinutes) * time.Minute
}

// ListingTTL resolves the user/debate listing lifetime.
func (c CacheConfig) ListingTTL() time.Duration {
	return time.Duration(c.ListingTTLMinutes) * time.Minute
}

// StatsTTL resolves the aggregate-statistics lifetime.
func (c CacheConfig) StatsTTL() time.Duration {
	return time.Duration(c.StatsTTLMinutes) * time.Minute
}

// AnalysisConfig carries the static word lists the analyzer is seeded with.
// Loaded once at startup and treated as read-only afterwards.
type AnalysisConfig struct {
	Categories    []CategoryConfig `yaml:"categories"`
	BiasTerms     []string         `yaml:"biasTerms"`
	WeakModifiers []string         `yaml:"weakModifiers"`
}

// CategoryConfig names one category label with its keyword list. Declaration
// order matters: earlier categories win classification ties.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Analysis.Categories) == 0 {
		cfg.Analysis = defaultConfig().Analysis
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.Server.ListenAddr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(archiveAPIKeyEnv); v != "" {
		c.Archive.APIKey = v
	}

	if v := os.Getenv(reputationEndpointEnv); v != "" {
		c.Reputation.Endpoint = v
	}

	if v := os.Getenv(reputationAPIKeyEnv); v != "" {
		c.Reputation.APIKey = v
	}

	if v := os.Getenv(trustedDomainsEnv); v != "" {
		var domains []string
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, d)
			}
		}
		if len(domains) > 0 {
			c.Trust.TrustedDomains = domains
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.ListenAddr != "" {
		base.Server = override.Server
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Fetcher.TimeoutSeconds > 0 {
		base.Fetcher.TimeoutSeconds = override.Fetcher.TimeoutSeconds
	}
	if override.Fetcher.MaxRedirects > 0 {
		base.Fetcher.MaxRedirects = override.Fetcher.MaxRedirects
	}
	if override.Fetcher.MaxBodyBytes > 0 {
		base.Fetcher.MaxBodyBytes = override.Fetcher.MaxBodyBytes
	}
	if override.Fetcher.RequestsPerSecond > 0 {
		base.Fetcher.RequestsPerSecond = override.Fetcher.RequestsPerSecond
	}

	if len(override.Trust.TrustedDomains) > 0 {
		base.Trust.TrustedDomains = override.Trust.TrustedDomains
	}

	if override.Archive.Endpoint != "" {
		base.Archive.Endpoint = override.Archive.Endpoint
	}
	if override.Archive.APIKey != "" {
		base.Archive.APIKey = override.Archive.APIKey
	}
	if override.Archive.TimeoutSeconds > 0 {
		base.Archive.TimeoutSeconds = override.Archive.TimeoutSeconds
	}

	if override.Reputation.Endpoint != "" {
		base.Reputation.Endpoint = override.Reputation.Endpoint
	}
	if override.Reputation.APIKey != "" {
		base.Reputation.APIKey = override.Reputation.APIKey
	}

	if override.Cache.VerificationTTLMinutes > 0 {
		base.Cache.VerificationTTLMinutes = override.Cache.VerificationTTLMinutes
	}
	if override.Cache.ListingTTLMinutes > 0 {
		base.Cache.ListingTTLMinutes = override.Cache.ListingTTLMinutes
	}
	if override.Cache.StatsTTLMinutes > 0 {
		base.Cache.StatsTTLMinutes = override.Cache.StatsTTLMinutes
	}

	if len(override.Analysis.Categories) > 0 {
		base.Analysis.Categories = override.Analysis.Categories
	}
	if len(override.Analysis.BiasTerms) > 0 {
		base.Analysis.BiasTerms = override.Analysis.BiasTerms
	}
	if len(override.Analysis.WeakModifiers) > 0 {
		base.Analysis.WeakModifiers = override.Analysis.WeakModifiers
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{ListenAddr: ":8080"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Fetcher: FetcherConfig{
			TimeoutSeconds:    15,
			MaxRedirects:      5,
			MaxBodyBytes:      5 * 1024 * 1024,
			RequestsPerSecond: 4,
		},
		Trust: TrustConfig{
			TrustedDomains: []string{
				"reuters.com",
				"apnews.com",
				"bbc.com",
				"nature.com",
				"science.org",
				"who.int",
				"europa.eu",
				"gov.uk",
				"wikipedia.org",
			},
		},
		Archive: ArchiveConfig{
			Endpoint:       "https://web.archive.org/save",
			TimeoutSeconds: 10,
		},
		Cache: CacheConfig{
			VerificationTTLMinutes: 60,
			ListingTTLMinutes:      10,
			StatsTTLMinutes:        5,
		},
		Analysis: AnalysisConfig{
			Categories: []CategoryConfig{
				{Name: "general", Keywords: nil},
				{Name: "politics", Keywords: []string{
					"government", "election", "policy", "parliament", "senate",
					"president", "minister", "vote", "law", "democracy",
					"campaign", "legislation", "congress", "party", "referendum",
				}},
				{Name: "science", Keywords: []string{
					"research", "study", "experiment", "scientist", "data",
					"hypothesis", "evidence", "laboratory", "theory", "peer",
					"journal", "physics", "biology", "chemistry", "discovery",
				}},
				{Name: "technology", Keywords: []string{
					"software", "computer", "internet", "digital", "algorithm",
					"startup", "innovation", "device", "platform", "network",
					"artificial", "intelligence", "cybersecurity", "hardware", "app",
				}},
				{Name: "health", Keywords: []string{
					"health", "medical", "disease", "treatment", "patient",
					"vaccine", "hospital", "doctor", "medicine", "clinical",
					"symptom", "therapy", "virus", "diagnosis", "epidemic",
				}},
				{Name: "economy", Keywords: []string{
					"economy", "market", "inflation", "trade", "investment",
					"finance", "bank", "stock", "unemployment", "budget",
					"currency", "tax", "growth", "recession", "industry",
				}},
				{Name: "environment", Keywords: []string{
					"climate", "environment", "emission", "carbon", "renewable",
					"pollution", "energy", "warming", "biodiversity", "sustainability",
					"ecosystem", "conservation", "fossil", "weather", "ocean",
				}},
				{Name: "sports", Keywords: []string{
					"game", "team", "player", "season", "championship",
					"league", "match", "score", "coach", "tournament",
					"olympic", "athlete", "football", "basketball", "stadium",
				}},
				{Name: "culture", Keywords: []string{
					"film", "music", "art", "book", "artist",
					"museum", "festival", "theater", "author", "culture",
					"exhibition", "novel", "cinema", "literature", "heritage",
				}},
			},
			BiasTerms: []string{
				"outrageous", "shocking", "disaster", "catastrophe", "scandal",
				"corrupt", "radical", "extremist", "destroy", "betray",
				"disgrace", "horrif", "terribl", "unbelievab", "devastat",
				"evil", "insane", "ridiculous", "pathetic", "fraud",
			},
			WeakModifiers: []string{"very", "really", "basically", "literally"},
		},
	}
}
