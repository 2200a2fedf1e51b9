package domain

// TransportKind selects how the MCP server is exposed.
type TransportKind string

const (
	TransportStdio          TransportKind = "stdio"
	TransportStreamableHTTP TransportKind = "streamable-http"
)

// CommentBackend selects the comment store implementation.
type CommentBackend string

const (
	CommentBackendMemory CommentBackend = "memory"
	CommentBackendBolt   CommentBackend = "bolt"
	CommentBackendMySQL  CommentBackend = "mysql"
)

type Config struct {
	Server        ServerConfig        `json:"server"`
	Auth          AuthConfig          `json:"auth"`
	Generator     GeneratorConfig     `json:"generator"`
	Comments      CommentsConfig      `json:"comments"`
	Host          HostConfig          `json:"host"`
	Observability ObservabilityConfig `json:"observability"`
	Logging       LoggingConfig       `json:"logging"`
	Tools         ToolSetConfig       `json:"tools"`
}

type ServerConfig struct {
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	Transport TransportKind `json:"transport"`
	HTTPAddr  string        `json:"httpAddr"`
	HTTPPath  string        `json:"httpPath"`
}

// AuthConfig maps callers to capabilities. Stdio sessions run as the stdio
// principal; HTTP sessions authenticate with one of the bearer tokens.
type AuthConfig struct {
	StdioPrincipal PrincipalConfig `json:"stdioPrincipal"`
	Tokens         []TokenConfig   `json:"tokens"`
}

type PrincipalConfig struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities"`
}

type TokenConfig struct {
	Token        string   `json:"token"`
	PrincipalID  string   `json:"principalId"`
	Capabilities []string `json:"capabilities"`
}

type GeneratorConfig struct {
	OutputDir    string `json:"outputDir"`
	PackageName  string `json:"packageName"`
	FilePrefix   string `json:"filePrefix"`
	DomainImport string `json:"domainImport"`
}

type CommentsConfig struct {
	Backend     CommentBackend `json:"backend"`
	BoltPath    string         `json:"boltPath"`
	DSN         string         `json:"dsn"`
	TablePrefix string         `json:"tablePrefix"`
}

// HostConfig describes the site environment reported by the version tool.
type HostConfig struct {
	WordPressVersion        string `json:"wordpressVersion"`
	PHPVersion              string `json:"phpVersion"`
	MinimumWordPressVersion string `json:"minimumWordPressVersion"`
}

type ObservabilityConfig struct {
	ListenAddress string `json:"listenAddress"`
	Metrics       bool   `json:"metrics"`
}

type LoggingConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

type ToolSetConfig struct {
	Site        bool `json:"site"`
	Boilerplate bool `json:"boilerplate"`
}

// Principal returns the principal configured for stdio sessions.
func (c AuthConfig) Principal() Principal {
	return Principal{ID: c.StdioPrincipal.ID, Capabilities: c.StdioPrincipal.Capabilities}
}

// Lookup resolves a bearer token to its principal.
func (c AuthConfig) Lookup(token string) (Principal, bool) {
	if token == "" {
		return Principal{}, false
	}
	for _, t := range c.Tokens {
		if t.Token == token {
			return Principal{ID: t.PrincipalID, Capabilities: t.Capabilities}, true
		}
	}
	return Principal{}, false
}
