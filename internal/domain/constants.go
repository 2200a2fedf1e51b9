package domain

const (
	DefaultServerName                 = "wpmcp"
	DefaultServerVersion              = "0.1.0"
	DefaultTransport                  = TransportStdio
	DefaultHTTPAddr                   = "127.0.0.1:8080"
	DefaultHTTPPath                   = "/mcp"
	DefaultGeneratorOutputDir         = "internal/tools/generated"
	DefaultGeneratorPackageName       = "generated"
	DefaultGeneratorFilePrefix        = "class-"
	DefaultGeneratorDomainImport      = "wpmcp/internal/domain"
	DefaultCommentsBackend            = CommentBackendMemory
	DefaultCommentsBoltPath           = "data/comments.db"
	DefaultCommentsTablePrefix        = "wp_"
	DefaultWordPressVersion           = "6.8.1"
	DefaultPHPVersion                 = "8.2.0"
	DefaultObservabilityListenAddress = "0.0.0.0:9090"
	DefaultLogLevel                   = "info"
	DefaultLogMaxSizeMB               = 100
	DefaultLogMaxBackups              = 3
	DefaultLogMaxAgeDays              = 28
	DefaultConfigReloadDebounceMillis = 200
)

// Comment listing bounds.
const (
	DefaultCommentsPerPage = 10
	MaxCommentsPerPage     = 100
	UnknownPostTitle       = "Unknown Post"
)

// Built-in tool names.
const (
	ToolNameVersionInfo = "mmt_get_version_info"
	ToolNameComments    = "wmb_get_comments_tool"
	ToolNameCreateTool  = "wmb_create_mcp_tool"
)

// Tool set names used to enable groups of built-in tools.
const (
	ToolSetSite        = "site"
	ToolSetBoilerplate = "boilerplate"
)
