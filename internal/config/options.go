package config

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; history DB is data_dir/medic.db"},
		{Key: "db_url", Default: "", Comment: "History store: sqlite://path or memory:// (empty = sqlite under data_dir)"},
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address for the web server"},

		{Key: "auth.token", Default: "", Comment: "Bearer token required on /api/* when set"},
		{Key: "http.max_body_bytes", Default: 1 << 20, Comment: "Maximum accepted request body size"},

		{Key: "llm.provider", Default: "anthropic", Comment: "Completion backend (anthropic)"},
		{Key: "llm.model", Default: "claude-sonnet-4-5", Comment: "Model used for chat and analysis"},
		{Key: "llm.api_key", Default: "", Comment: "API key; prefer `medic key set` to keep it in the system keyring"},
		{Key: "llm.base_url", Default: "", Comment: "Override the API base URL"},
		{Key: "llm.timeout", Default: "120s", Comment: "Per-request timeout"},
		{Key: "llm.max_retries", Default: 2, Comment: "Retries on transient API errors"},

		{Key: "chat.max_tokens", Default: 2048, Comment: "Reply token budget for study chat"},
		{Key: "analyze.max_tokens", Default: 4096, Comment: "Reply token budget for encounter analysis"},

		{Key: "cache.enabled", Default: true, Comment: "Reuse the stored analysis for an identical transcript"},
		{Key: "history.enabled", Default: true, Comment: "Record chat and analysis exchanges"},

		{Key: "render.width", Default: 0, Comment: "Terminal render width (0 = detect)"},
		{Key: "render.class", Default: "", Comment: "Extra CSS class added to rendered HTML"},

		{Key: "tls.domains", Default: []string{}, Comment: "Serve HTTPS with automatic certificates for these domains"},
		{Key: "tls.email", Default: "", Comment: "ACME account email"},
		{Key: "tls.storage_dir", Default: "", Comment: "Certificate storage (default: $XDG_CACHE_HOME/medic/certmagic)"},

		{Key: "keys.provider", Default: "keyring", Comment: "Where `medic key set` stores the API key: keyring or config"},
	}
}
