package model

import "time"

// Config is the single immutable configuration value supplied at
// construction. All heuristic constants live here as defaults; no
// runtime reconfiguration is supported.
type Config struct {
	Extractor   ExtractorConfig   `yaml:"extractor"`
	Analyzer    AnalyzerConfig    `yaml:"analyzer"`
	Resolver    ResolverConfig    `yaml:"resolver"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	LLM         LLMConfig         `yaml:"llm"`
	Output      OutputConfig      `yaml:"output"`
}

// Pattern is a named regex. IDs make matched patterns traceable in
// Evidence records.
type Pattern struct {
	ID   string `yaml:"id"`
	Expr string `yaml:"expr"`
}

// ExtractorConfig configures claim extraction from documentation
type ExtractorConfig struct {
	Patterns            map[ClaimType][]string    `yaml:"patterns"`
	BaseConfidence      map[ClaimType]float64     `yaml:"base_confidence"`
	KeywordWeights      map[string]float64        `yaml:"keyword_weights"`
	KeywordFactor       float64                   `yaml:"keyword_factor"`       // weight multiplier per keyword hit
	ShortDescLen        int                       `yaml:"short_desc_len"`       // descriptions under this get ShortDescPenalty
	ShortDescPenalty    float64                   `yaml:"short_desc_penalty"`
	LongDescLen         int                       `yaml:"long_desc_len"`
	LongDescPenalty     float64                   `yaml:"long_desc_penalty"`
	ConfidenceThreshold float64                   `yaml:"confidence_threshold"` // claims below are dropped
	ContextWindow       int                       `yaml:"context_window"`       // lines before/after
	DedupeSimilarity    float64                   `yaml:"dedupe_similarity"`    // per-type Jaccard cutoff
}

// AnalyzerConfig configures reality analysis of source and manifests
type AnalyzerConfig struct {
	Patterns     map[RealityType][]Pattern `yaml:"patterns"`
	Dependencies map[string]RealityType    `yaml:"dependencies"` // manifest dependency name -> reality type

	// Confidence weighting constants for the line scan
	BaseConfidence      float64 `yaml:"base_confidence"`
	PatternWeight       float64 `yaml:"pattern_weight"` // per distinct matched pattern
	LongSnippetBonus    float64 `yaml:"long_snippet_bonus"`
	LongSnippetLen      int     `yaml:"long_snippet_len"`
	ShortSnippetPenalty float64 `yaml:"short_snippet_penalty"`
	ShortSnippetLen     int     `yaml:"short_snippet_len"`

	// Type/path-specific context bonuses
	TestPathBonus        float64  `yaml:"test_path_bonus"`
	BuildDescriptorBonus float64  `yaml:"build_descriptor_bonus"`
	HandlerPathBonus     float64  `yaml:"handler_path_bonus"`
	BuildDescriptors     []string `yaml:"build_descriptors"` // recognized build-descriptor filenames

	// Implementation-level cutoffs over confidence
	CompleteThreshold float64 `yaml:"complete_threshold"`
	PartialThreshold  float64 `yaml:"partial_threshold"`
	SkeletonThreshold float64 `yaml:"skeleton_threshold"`

	ManifestConfidence float64 `yaml:"manifest_confidence"` // fixed confidence for manifest evidence
	MergeSimilarity    float64 `yaml:"merge_similarity"`    // Jaccard cutoff for the merge pass
}

// ResolverConfig configures conflict resolution
type ResolverConfig struct {
	TypeMap         map[ClaimType][]RealityType `yaml:"type_map"`
	MatchSimilarity float64                     `yaml:"match_similarity"`
	HighConfidence  float64                     `yaml:"high_confidence"` // cutoff for "high confidence" claims

	// Severity scoring
	PriorityWeights    map[ClaimPriority]float64       `yaml:"priority_weights"`
	ConfidenceWeight   float64                         `yaml:"confidence_weight"`
	GapWeights         map[ImplementationLevel]float64 `yaml:"gap_weights"`
	CriticalThreshold  float64                         `yaml:"critical_threshold"`
	HighThreshold      float64                         `yaml:"high_threshold"`
	MediumThreshold    float64                         `yaml:"medium_threshold"`

	// Strategy preferences
	DefaultStrategy          ResolutionStrategy `yaml:"default_strategy"`
	PreferCodeForSecurity    bool               `yaml:"prefer_code_for_security"`
	PreferCodeForPerformance bool               `yaml:"prefer_code_for_performance"`
	AlwaysMergeTechnology    bool               `yaml:"always_merge_technology"`
	FlagCritical             bool               `yaml:"flag_critical"`

	// Consistency score coefficients
	TotalPenalty    float64 `yaml:"total_penalty"`
	CriticalPenalty float64 `yaml:"critical_penalty"`
}

// DiscoveryConfig configures file discovery at the pipeline boundary
type DiscoveryConfig struct {
	MaxFileBytes     int64    `yaml:"max_file_bytes"`
	DocExtensions    []string `yaml:"doc_extensions"`
	DocNamePrefixes  []string `yaml:"doc_name_prefixes"` // root-level doc names (README, CHANGELOG, ...)
	DocDirs          []string `yaml:"doc_dirs"`          // directories treated as documentation
	SourceExtensions []string `yaml:"source_extensions"`
	SourceFilenames  []string `yaml:"source_filenames"` // extensionless source files (Dockerfile, Makefile, ...)
	ManifestNames    []string `yaml:"manifest_names"`
	SkipDirs         []string `yaml:"skip_dirs"`
}

// ConcurrencyConfig bounds the worker pools
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"` // 0 = NumCPU
}

// CacheConfig configures the in-memory result cache used by batch runs
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// LLMConfig configures the optional LLM summarizer
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // "openai", "ollama", "" = disabled
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"-"` // from env only, never serialized
	BaseURL           string  `yaml:"base_url"`
	Timeout           int     `yaml:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens"`
	StrictReferences  bool    `yaml:"strict_references"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	HTTPProxy         string  `yaml:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults. The formula constants
// are heuristics, not semantics; override them in the config file if
// they do not fit a codebase.
func DefaultConfig() *Config {
	return &Config{
		Extractor: ExtractorConfig{
			Patterns:            defaultClaimPatterns(),
			BaseConfidence:      defaultBaseConfidence(),
			KeywordWeights:      defaultKeywordWeights(),
			KeywordFactor:       0.1,
			ShortDescLen:        10,
			ShortDescPenalty:    0.2,
			LongDescLen:         200,
			LongDescPenalty:     0.1,
			ConfidenceThreshold: 0.3,
			ContextWindow:       2,
			DedupeSimilarity:    0.8,
		},
		Analyzer: AnalyzerConfig{
			Patterns:     defaultRealityPatterns(),
			Dependencies: defaultDependencyMap(),

			BaseConfidence:      0.3,
			PatternWeight:       0.1,
			LongSnippetBonus:    0.2,
			LongSnippetLen:      50,
			ShortSnippetPenalty: 0.1,
			ShortSnippetLen:     10,

			TestPathBonus:        0.3,
			BuildDescriptorBonus: 0.4,
			HandlerPathBonus:     0.2,
			BuildDescriptors: []string{
				"Dockerfile", "docker-compose.yml", "docker-compose.yaml",
				"Makefile", "Jenkinsfile", ".gitlab-ci.yml",
			},

			CompleteThreshold: 0.8,
			PartialThreshold:  0.5,
			SkeletonThreshold: 0.3,

			ManifestConfidence: 0.7,
			MergeSimilarity:    0.7,
		},
		Resolver: ResolverConfig{
			TypeMap: map[ClaimType][]RealityType{
				ClaimTypeAPI:         {RealityAPIEndpoints},
				ClaimTypeSecurity:    {RealitySecurity, RealityAuthentication},
				ClaimTypePerformance: {RealityPerformance},
				ClaimTypeIntegration: {RealityIntegration, RealityDatabase},
				ClaimTypeTechnology:  {RealityDatabase, RealityIntegration, RealityPerformance},
				ClaimTypeDeployment:  {RealityDeployment},
			},
			MatchSimilarity: 0.7,
			HighConfidence:  0.8,

			PriorityWeights: map[ClaimPriority]float64{
				PriorityCritical: 0.4,
				PriorityHigh:     0.3,
				PriorityMedium:   0.2,
				PriorityLow:      0.1,
			},
			ConfidenceWeight: 0.3,
			GapWeights: map[ImplementationLevel]float64{
				LevelComplete:    0.0,
				LevelPartial:     0.2,
				LevelSkeleton:    0.5,
				LevelPlaceholder: 0.8,
			},
			CriticalThreshold: 0.9,
			HighThreshold:     0.7,
			MediumThreshold:   0.5,

			DefaultStrategy:          StrategyPreferCode,
			PreferCodeForSecurity:    true,
			PreferCodeForPerformance: true,
			AlwaysMergeTechnology:    true,
			FlagCritical:             true,

			TotalPenalty:    0.1,
			CriticalPenalty: 0.3,
		},
		Discovery: DiscoveryConfig{
			MaxFileBytes:    1_000_000,
			DocExtensions:   []string{".md", ".markdown", ".rst", ".txt", ".html", ".htm"},
			DocNamePrefixes: []string{"README", "CHANGELOG", "CONTRIBUTING", "ARCHITECTURE"},
			DocDirs:         []string{"docs", "doc"},
			SourceExtensions: []string{
				".go", ".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".rb",
				".rs", ".c", ".cpp", ".cs", ".php", ".kt", ".yml", ".yaml",
			},
			SourceFilenames: []string{"Dockerfile", "Makefile", "Jenkinsfile"},
			ManifestNames:   []string{"go.mod", "package.json", "requirements.txt", "Cargo.toml"},
			SkipDirs: []string{
				".git", "node_modules", "vendor", "target", "dist", "build",
				"__pycache__", ".venv", ".idea", ".vscode",
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 0, // NumCPU
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:          "", // Disabled by default
			Timeout:           30,
			MaxTokens:         1000,
			StrictReferences:  true, // Always enforce
			RequestsPerSecond: 1,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

func defaultClaimPatterns() map[ClaimType][]string {
	return map[ClaimType][]string{
		ClaimTypeFeature: {
			`(?i)supports?\s+(.{3,})`,
			`(?i)provides?\s+(.{3,})`,
			`(?i)\bfeatures?:\s*(.{3,})`,
			`(?i)allows?\s+(?:you\s+to\s+)?(.{3,})`,
			`(?i)enables?\s+(.{3,})`,
		},
		ClaimTypeCapability: {
			`(?i)\bcan\s+(\w.{3,})`,
			`(?i)\bable\s+to\s+(.{3,})`,
			`(?i)capable\s+of\s+(.{3,})`,
			`(?i)automatically\s+(.{3,})`,
		},
		ClaimTypeIntegration: {
			`(?i)integrates?\s+with\s+(.{2,})`,
			`(?i)works?\s+with\s+(.{2,})`,
			`(?i)compatible\s+with\s+(.{2,})`,
			`(?i)connects?\s+to\s+(.{2,})`,
		},
		ClaimTypeTechnology: {
			`(?i)built\s+(?:with|on|using)\s+(.{2,})`,
			`(?i)powered\s+by\s+(.{2,})`,
			`(?i)written\s+in\s+(.{2,})`,
			`(?i)based\s+on\s+(.{2,})`,
		},
		ClaimTypePerformance: {
			`(?i)(blazing(?:ly)?\s+fast[^.]*)`,
			`(?i)(high[\s-]performance[^.]*)`,
			`(?i)(optimi[sz]ed\s+for\s+[^.]+)`,
			`(?i)(low[\s-]latency[^.]*)`,
			`(?i)(handles?\s+\d[\d,]*\+?\s*(?:requests|rps|qps|connections)[^.]*)`,
			`(?i)(scales?\s+(?:to|horizontally|vertically)[^.]*)`,
		},
		ClaimTypeSecurity: {
			`(?i)(secured?\s+(?:by|with|using)\s+[^.]+)`,
			`(?i)((?:oauth2?|jwt|saml|sso)\b[^.]*)`,
			`(?i)(encrypt(?:s|ed|ion)\b[^.]*)`,
			`(?i)(authenticat(?:es?|ion|ed)\b[^.]*)`,
			`(?i)(authori[sz](?:es?|ation)\b[^.]*)`,
			`(?i)(role[\s-]based\s+access[^.]*)`,
		},
		ClaimTypeDeployment: {
			`(?i)deploy(?:s|ed|able|ment)?\s+(?:to|on|with|via)\s+(.{2,})`,
			`(?i)(docker(?:ized)?\b[^.]*)`,
			`(?i)((?:kubernetes|helm\s+chart)[^.]*)`,
			`(?i)(ci/cd[^.]*)`,
			`(?i)runs?\s+(?:on|in)\s+(.{2,})`,
		},
		ClaimTypeAPI: {
			`(?i)(rest(?:ful)?\s+api[^.]*)`,
			`(?i)(graphql\s+(?:api|endpoint)[^.]*)`,
			`(?i)(api\s+endpoints?[^.]*)`,
			`(?i)(grpc\s+(?:api|service)[^.]*)`,
			`(?i)(webhooks?\s+[^.]+)`,
			`(?i)exposes?\s+(.{3,})`,
		},
	}
}

func defaultBaseConfidence() map[ClaimType]float64 {
	return map[ClaimType]float64{
		ClaimTypeFeature:     0.50,
		ClaimTypeCapability:  0.45,
		ClaimTypeIntegration: 0.55,
		ClaimTypeTechnology:  0.55,
		ClaimTypePerformance: 0.50,
		ClaimTypeSecurity:    0.60,
		ClaimTypeDeployment:  0.55,
		ClaimTypeAPI:         0.60,
	}
}

func defaultKeywordWeights() map[string]float64 {
	return map[string]float64{
		"authentication": 1.5,
		"oauth":          1.5,
		"jwt":            1.2,
		"encryption":     1.2,
		"api":            1.0,
		"database":       1.0,
		"postgres":       1.0,
		"redis":          1.0,
		"docker":         1.0,
		"kubernetes":     1.0,
		"graphql":        1.0,
		"websocket":      0.8,
		"cache":          0.8,
		"realtime":       0.8,
		"fast":           0.5,
		"scalable":       0.5,
	}
}

func defaultRealityPatterns() map[RealityType][]Pattern {
	return map[RealityType][]Pattern{
		RealityAuthentication: {
			{ID: "auth.jwt", Expr: `(?i)jwt\.|jsonwebtoken|golang-jwt`},
			{ID: "auth.oauth", Expr: `(?i)oauth2?\b`},
			{ID: "auth.middleware", Expr: `(?i)auth(?:entication)?[_]?middleware|requireauth|login[_]?required`},
			{ID: "auth.password", Expr: `(?i)bcrypt|scrypt|argon2|password[_]?hash`},
			{ID: "auth.session", Expr: `(?i)session(?:store|manager|\.get|\.set)`},
		},
		RealityAPIEndpoints: {
			{ID: "api.route", Expr: `(?i)\w+\.(?:get|post|put|patch|delete|handle(?:func)?)\s*\(\s*["'/]`},
			{ID: "api.handler", Expr: `(?i)func\s+\w*handler|http\.handlerfunc`},
			{ID: "api.decorator", Expr: `@(?:app|router|api)\.(?:get|post|put|patch|delete|route)`},
			{ID: "api.grpc", Expr: `(?i)grpc\.newserver|register\w+server`},
			{ID: "api.openapi", Expr: `(?i)swagger|openapi`},
		},
		RealityDatabase: {
			{ID: "db.sql", Expr: `(?i)\b(?:select\s+.+\s+from|insert\s+into|update\s+\w+\s+set|delete\s+from)\b`},
			{ID: "db.driver", Expr: `(?i)database/sql|gorm\.|sqlalchemy|mongoose|sequelize|psycopg`},
			{ID: "db.conn", Expr: `(?i)sql\.open|connect(?:ion)?[_]?string|\bdsn\b`},
			{ID: "db.migration", Expr: `(?i)migrat(?:e|ion)`},
		},
		RealitySecurity: {
			{ID: "sec.crypto", Expr: `(?i)crypto/|encrypt|decrypt|aes\.|rsa\.|sha256`},
			{ID: "sec.tls", Expr: `(?i)\btls\.|certificat`},
			{ID: "sec.sanitize", Expr: `(?i)sanitiz|escape[_]?html|csrf|xss`},
			{ID: "sec.secrets", Expr: `(?i)secret(?:s|[_]?key|[_]?manager)|vault`},
		},
		RealityIntegration: {
			{ID: "int.queue", Expr: `(?i)kafka|rabbitmq|amqp|nats\.|pubsub`},
			{ID: "int.webhook", Expr: `(?i)webhook`},
			{ID: "int.client", Expr: `(?i)(?:http|api)[_]?client|\bsdk\b`},
			{ID: "int.vendor", Expr: `(?i)stripe|twilio|sendgrid|slack`},
		},
		RealityPerformance: {
			{ID: "perf.cache", Expr: `(?i)cache\.|redis|memcache|\blru\b`},
			{ID: "perf.pool", Expr: `(?i)(?:worker|connection|buffer)[_\s]?pool|sync\.pool`},
			{ID: "perf.concurrent", Expr: `(?i)goroutine|go\s+func\(|asyncio|thread[_]?pool`},
			{ID: "perf.batch", Expr: `(?i)batch(?:ing|[_]?size)|bulk[_]?(?:insert|write)`},
		},
		RealityTesting: {
			{ID: "test.func", Expr: `(?i)func\s+test\w+|def\s+test_|\bit\(['"]|describe\(['"]`},
			{ID: "test.assert", Expr: `(?i)\bassert|expect\(|require\.`},
			{ID: "test.mock", Expr: `(?i)\bmock|\bstub|\bfake\w*\b`},
			{ID: "test.bench", Expr: `(?i)func\s+benchmark\w+`},
		},
		RealityDeployment: {
			{ID: "deploy.container", Expr: `(?i)^from\s+\S+|docker-compose|\bimage:\s`},
			{ID: "deploy.k8s", Expr: `(?i)apiversion:|kind:\s*(?:deployment|service|ingress)`},
			{ID: "deploy.ci", Expr: `(?i)\bjobs:|\bstages:|\bworkflow`},
			{ID: "deploy.health", Expr: `(?i)healthz|readiness|liveness|/health\b`},
		},
	}
}

func defaultDependencyMap() map[string]RealityType {
	return map[string]RealityType{
		// Performance / caching
		"redis":     RealityPerformance,
		"memcached": RealityPerformance,
		"go-cache":  RealityPerformance,

		// Databases
		"postgres":   RealityDatabase,
		"pgx":        RealityDatabase,
		"mysql":      RealityDatabase,
		"mongodb":    RealityDatabase,
		"mongoose":   RealityDatabase,
		"sqlite":     RealityDatabase,
		"gorm":       RealityDatabase,
		"sqlalchemy": RealityDatabase,
		"sequelize":  RealityDatabase,

		// Authentication
		"jsonwebtoken": RealityAuthentication,
		"golang-jwt":   RealityAuthentication,
		"passport":     RealityAuthentication,
		"oauth":        RealityAuthentication,
		"bcrypt":       RealityAuthentication,

		// Security
		"helmet": RealitySecurity,
		"vault":  RealitySecurity,

		// API frameworks
		"express": RealityAPIEndpoints,
		"gin":     RealityAPIEndpoints,
		"echo":    RealityAPIEndpoints,
		"fiber":   RealityAPIEndpoints,
		"fastapi": RealityAPIEndpoints,
		"flask":   RealityAPIEndpoints,
		"django":  RealityAPIEndpoints,
		"graphql": RealityAPIEndpoints,

		// Messaging / integration
		"kafka":    RealityIntegration,
		"rabbitmq": RealityIntegration,
		"amqp":     RealityIntegration,
		"nats":     RealityIntegration,

		// Testing
		"jest":    RealityTesting,
		"mocha":   RealityTesting,
		"pytest":  RealityTesting,
		"testify": RealityTesting,
	}
}
