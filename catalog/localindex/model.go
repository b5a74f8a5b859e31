// Package localindex serves and queries a Postgres-backed index of
// Sentinel-2 scenes whose band files live on local or network storage.
package localindex

import (
	"database/sql"

	"github.com/google/uuid"
)

// Context is the context for a local index operation
type Context struct {
	DB        *sql.DB
	sessionID string
}

// AppName returns the name of the application
func (c *Context) AppName() string {
	return "ndvi-broker"
}

// SessionID returns a Session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = uuid.New().String()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}
