package mcplog

import (
	"context"
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

type k8sErrorClass struct {
	matches func(error) bool
	level   Level
	message func(operation string) string
}

func fixed(message string) func(string) string {
	return func(string) string { return message }
}

var k8sErrorClasses = []k8sErrorClass{
	{apierrors.IsNotFound, LevelInfo, fixed("Resource not found - it may not exist or may have been deleted")},
	{apierrors.IsForbidden, LevelError, func(operation string) string {
		return "Permission denied - check RBAC permissions for " + operation
	}},
	{apierrors.IsUnauthorized, LevelError, fixed("Authentication failed - check cluster credentials")},
	{apierrors.IsAlreadyExists, LevelWarning, fixed("Resource already exists")},
	{apierrors.IsInvalid, LevelError, fixed("Invalid resource specification - check resource definition")},
	{apierrors.IsBadRequest, LevelError, fixed("Invalid request - check parameters")},
	{apierrors.IsConflict, LevelError, fixed("Resource conflict - resource may have been modified")},
	{apierrors.IsTimeout, LevelError, fixed("Request timeout - cluster may be slow or overloaded")},
	{apierrors.IsServerTimeout, LevelError, fixed("Server timeout - cluster may be slow or overloaded")},
	{apierrors.IsServiceUnavailable, LevelError, fixed("Service unavailable - cluster may be unreachable")},
	{apierrors.IsTooManyRequests, LevelWarning, fixed("Rate limited - too many requests to the cluster")},
	{func(err error) bool {
		var apiStatus apierrors.APIStatus
		return errors.As(err, &apiStatus)
	}, LevelError, fixed("Operation failed - cluster may be unreachable or experiencing issues")},
}

// classifyK8sError maps a Kubernetes API error to a log level and message.
// Returns false for nil errors or non-Kubernetes errors.
func classifyK8sError(err error, operation string) (Level, string, bool) {
	if err == nil {
		return 0, "", false
	}
	for _, class := range k8sErrorClasses {
		if class.matches(err) {
			return class.level, class.message(operation), true
		}
	}
	return 0, "", false
}

// HandleK8sError sends appropriate MCP log messages based on Kubernetes API error types.
// operation should describe the operation (e.g., "workbench access", "training job listing").
func HandleK8sError(ctx context.Context, err error, operation string) {
	if level, message, ok := classifyK8sError(err, operation); ok {
		SendMCPLog(ctx, level, message)
	}
}
