package model

// Config is the full runtime configuration. Field names double as
// YAML keys and viper keys.
type Config struct {
	LLM         LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Chunking    ChunkingConfig     `yaml:"chunking" mapstructure:"chunking"`
	Language    LanguageConfig     `yaml:"language" mapstructure:"language"`
	FactCheck   FactCheckConfig    `yaml:"factcheck" mapstructure:"factcheck"`
	Classifiers []ClassifierConfig `yaml:"classifiers" mapstructure:"classifiers"`
	Transcript  TranscriptConfig   `yaml:"transcript" mapstructure:"transcript"`
	Server      ServerConfig       `yaml:"server" mapstructure:"server"`
	Cache       CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Authority   AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
	Log         LogConfig          `yaml:"log" mapstructure:"log"`
}

// LLMConfig selects and tunes the language model backend
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // groq, openai, anthropic, ollama
	Model       string  `yaml:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds, per call
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`

	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ChunkingConfig controls the map step of summarization
type ChunkingConfig struct {
	Size         int `yaml:"size" mapstructure:"size"`
	Overlap      int `yaml:"overlap" mapstructure:"overlap"`
	Concurrency  int `yaml:"concurrency" mapstructure:"concurrency"`
	DegradeChars int `yaml:"degrade_chars" mapstructure:"degrade_chars"`
}

// LanguageConfig controls detection and translation
type LanguageConfig struct {
	// Strategy is "whole" (detect once on the full document) or "off"
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

// FactCheckConfig tunes the temporal gate and the calibrator
type FactCheckConfig struct {
	ReferenceYear       int     `yaml:"reference_year" mapstructure:"reference_year"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}

// ClassifierConfig describes one ensemble member
type ClassifierConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Kind    string `yaml:"kind" mapstructure:"kind"` // linear, remote
	Path    string `yaml:"path,omitempty" mapstructure:"path"`
	URL     string `yaml:"url,omitempty" mapstructure:"url"`
	Timeout int    `yaml:"timeout,omitempty" mapstructure:"timeout"` // seconds, remote only
}

// TranscriptConfig controls video transcript retrieval
type TranscriptConfig struct {
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	Languages     []string `yaml:"languages" mapstructure:"languages"`
	Timeout       int      `yaml:"timeout" mapstructure:"timeout"` // seconds
	UserAgent     string   `yaml:"user_agent" mapstructure:"user_agent"`
	RespectRobots bool     `yaml:"respect_robots" mapstructure:"respect_robots"`
	MaxRetries    int      `yaml:"max_retries" mapstructure:"max_retries"`
}

// ServerConfig controls the HTTP surface
type ServerConfig struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// CacheConfig controls the transcript cache
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir       string `yaml:"dir" mapstructure:"dir"`
	MemoryTTL int    `yaml:"memory_ttl" mapstructure:"memory_ttl"` // minutes
	DiskTTL   int    `yaml:"disk_ttl" mapstructure:"disk_ttl"`     // hours
}

// AuthorityConfig holds the domain lists used to grade cited sources
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
}

// PathPattern assigns a tier to URLs whose path matches Pattern
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console, json, auto
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:          "groq",
			Model:             "gemma2-9b-it",
			Timeout:           60,
			MaxTokens:         2048,
			Temperature:       0.3,
			MaxRetries:        3,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Chunking: ChunkingConfig{
			Size:         1000,
			Overlap:      200,
			Concurrency:  4,
			DegradeChars: 500,
		},
		Language: LanguageConfig{
			Strategy: "whole",
		},
		FactCheck: FactCheckConfig{
			ReferenceYear:       2019,
			ConfidenceThreshold: 0.8,
		},
		Transcript: TranscriptConfig{
			BaseURL:    "https://www.youtube.com",
			Languages:  []string{"en", "hi"},
			Timeout:    30,
			UserAgent:  "newslens/0.1 (+https://github.com/ppiankov/newslens)",
			MaxRetries: 2,
		},
		Server: ServerConfig{
			Addr:         ":5001",
			MaxBodyBytes: 2 << 20,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "~/.newslens/cache",
			MemoryTTL: 30,
			DiskTTL:   24,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"who.int",
				"un.org",
				"europa.eu",
				"gov.in",
				"nic.in",
				"gov.uk",
				"doi.org",
				"nih.gov",
				"pubmed.ncbi.nlm.nih.gov",
			},
			SecondaryDomains: []string{
				"reuters.com",
				"apnews.com",
				"bbc.co.uk",
				"bbc.com",
				"pti.in",
				"thehindu.com",
				"wikipedia.org",
				"factcheck.org",
				"snopes.com",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}
