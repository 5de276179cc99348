package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "cmdb_sync",
			TimeoutSeconds: 1,
		}

		// Connect should fail (timeout or refused); history being
		// unreachable must surface as an error the caller can warn on.
		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}
