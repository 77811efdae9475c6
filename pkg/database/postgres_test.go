package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/evaluation-system/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "eval", Password: "pw", Name: "evaluation", SSLMode: "disable"})

	assert.Equal(t, "host=db port=5433 user=eval password=pw dbname=evaluation sslmode=disable connect_timeout=5 application_name=evaluation-system", dsn)
}
