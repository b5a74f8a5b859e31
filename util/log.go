package util

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Severity levels for audit log entries, loosely following syslog.
const (
	ERROR = iota + 3
	WARN
	NOTICE
	INFO
)

// LogContext provides the identifying information attached to every
// log line emitted on behalf of an operation.
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a LogContext with no backing operation, suitable
// for startup code and tests
type BasicLogContext struct {
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return "ndvi-broker"
}

// SessionID returns a Session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = uuid.New().String()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// LogAuditInput holds the fields of a single audit record
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity int
}

func contextPrefix(context LogContext) string {
	if context == nil {
		return "ndvi-broker"
	}
	return fmt.Sprintf("%s [%s]", context.AppName(), context.SessionID())
}

// LogInfo logs an informational message
func LogInfo(context LogContext, message string) {
	log.Printf("%s INFO %s", contextPrefix(context), message)
}

// LogAlert logs a message that somebody should probably look at
func LogAlert(context LogContext, message string) {
	log.Printf("%s ALERT %s", contextPrefix(context), message)
}

// LogSimpleErr logs a message together with its underlying error and
// returns an error suitable for bubbling up to the caller
func LogSimpleErr(context LogContext, message string, err error) error {
	log.Printf("%s ERROR %s %v", contextPrefix(context), message, err)
	return fmt.Errorf("%s: %v", message, err)
}

// LogAudit records who did what to whom
func LogAudit(context LogContext, input LogAuditInput) {
	log.Printf("%s AUDIT [sev:%d] actor=%q action=%q actee=%q %s",
		contextPrefix(context), input.Severity, input.Actor, input.Action, input.Actee, input.Message)
}
