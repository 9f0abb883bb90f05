package mcplog

import (
	"context"
	"regexp"

	"github.com/go-logr/logr"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"k8s.io/klog/v2"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// MCPSessionContextKey is the context key for storing MCP ServerSession
const MCPSessionContextKey = ContextKey("mcp_session")

// LoggerName identifies this server in MCP log notifications.
const LoggerName = "rhoai-mcp-server"

// Level represents MCP log severity levels (RFC 5424 syslog levels).
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelCritical
	LevelAlert
	LevelEmergency
)

var levelStrings = [...]string{
	LevelDebug:     "debug",
	LevelInfo:      "info",
	LevelNotice:    "notice",
	LevelWarning:   "warning",
	LevelError:     "error",
	LevelCritical:  "critical",
	LevelAlert:     "alert",
	LevelEmergency: "emergency",
}

// String returns the MCP protocol string representation of the level.
func (l Level) String() string {
	if l >= 0 && int(l) < len(levelStrings) {
		return levelStrings[l]
	}
	return "debug"
}

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

func keepPrefix(expr string) redaction {
	return redaction{pattern: regexp.MustCompile(expr), replacement: `$1[REDACTED]`}
}

func keepField(expr string) redaction {
	return redaction{pattern: regexp.MustCompile(expr), replacement: `$1"[REDACTED]"`}
}

func keepURL(expr string) redaction {
	return redaction{pattern: regexp.MustCompile(expr), replacement: `${user}[REDACTED]${host}`}
}

func whole(expr string) redaction {
	return redaction{pattern: regexp.MustCompile(expr), replacement: `[REDACTED]`}
}

var (
	// mcpLogger is a dedicated named logger for MCP client-facing logs,
	// kept apart from the server logs.
	mcpLogger logr.Logger = klog.NewKlogr().WithName("mcp")

	// redactions are applied in order, field-preserving rules first.
	redactions = []redaction{
		keepField(`("password"\s*:\s*)"[^"]*"`),
		keepField(`("token"\s*:\s*)"[^"]*"`),
		keepField(`("secret"\s*:\s*)"[^"]*"`),
		keepField(`("api[_-]?key"\s*:\s*)"[^"]*"`),
		keepField(`("access[_-]?key"\s*:\s*)"[^"]*"`),
		keepField(`("client[_-]?secret"\s*:\s*)"[^"]*"`),
		keepField(`("private[_-]?key"\s*:\s*)"[^"]*"`),
		// S3 data connection keys
		keepField(`("AWS_SECRET_ACCESS_KEY"\s*:\s*)"[^"]*"`),
		keepPrefix(`(Bearer\s+)[A-Za-z0-9\-._~+/]+=*`),
		keepPrefix(`(Basic\s+)[A-Za-z0-9+/]+=*`),
		keepPrefix(`(aws_secret_access_key\s*=\s*)[A-Za-z0-9/+=]{40}`),
		keepURL(`(?P<user>(?:postgres|mysql|mongodb(?:\+srv)?)://[^:/@\s]+:)[^@\s]+(?P<host>@)`),
		whole(`(A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}`),
		whole(`ghp_[a-zA-Z0-9]{36}`),
		whole(`github_pat_[a-zA-Z0-9]{22}_[a-zA-Z0-9]{59}`),
		whole(`glpat-[a-zA-Z0-9\-_]{20}`),
		whole(`hf_[a-zA-Z0-9]{34}`),
		whole(`AIza[0-9A-Za-z\-_]{35}`),
		whole(`AccountKey=[A-Za-z0-9+/]{88}==`),
		whole(`sk-proj-[a-zA-Z0-9]{48}`),
		whole(`sk-ant-api03-[a-zA-Z0-9\-_]{95}`),
		whole(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		whole(`-----BEGIN[A-Z ]+PRIVATE KEY( BLOCK)?-----`),
	}
)

func sanitizeMessage(msg string) string {
	for _, r := range redactions {
		msg = r.pattern.ReplaceAllString(msg, r.replacement)
	}
	return msg
}

// SendMCPLog sends a log notification to the MCP client and server logs.
// Uses dedicated "mcp" named logger. Message is automatically sanitized.
func SendMCPLog(ctx context.Context, level Level, message string) {
	message = sanitizeMessage(message)
	switch level {
	case LevelError, LevelCritical, LevelAlert, LevelEmergency:
		mcpLogger.Error(nil, message)
	case LevelWarning, LevelNotice:
		mcpLogger.V(1).Info(message)
	default:
		mcpLogger.V(2).Info(message)
	}

	session, ok := ctx.Value(MCPSessionContextKey).(*mcp.ServerSession)
	if !ok || session == nil {
		return
	}

	if err := session.Log(ctx, &mcp.LoggingMessageParams{
		Level:  mcp.LoggingLevel(level.String()),
		Logger: LoggerName,
		Data:   message,
	}); err != nil {
		mcpLogger.V(3).Info("failed to send log to MCP client", "error", err)
	}
}
