package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	cfg := map[string]string{
		"PORT":    "9090",
		"BAD_INT": "nine",
		"EMPTY":   "",
		"DEBUG":   "true",
		"ORIGINS": " https://a.example , ,https://b.example",
	}

	assert.Equal(t, "9090", GetString(cfg, "PORT", "8080"))
	assert.Equal(t, "fallback", GetString(cfg, "EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetString(nil, "PORT", "fallback"))

	assert.Equal(t, 9090, GetInt(cfg, "PORT", 8080))
	assert.Equal(t, 8080, GetInt(cfg, "BAD_INT", 8080))
	assert.Equal(t, 8080, GetInt(cfg, "MISSING", 8080))

	assert.True(t, GetBool(cfg, "DEBUG", false))
	assert.True(t, GetBool(cfg, "MISSING", true))

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetList(cfg, "ORIGINS"))
	assert.Nil(t, GetList(cfg, "MISSING"))

	durations := map[string]string{"DRAIN": "45s", "BROKEN": "soon", "NEGATIVE": "-5s"}
	assert.Equal(t, 45*time.Second, GetDuration(durations, "DRAIN", time.Second))
	assert.Equal(t, time.Second, GetDuration(durations, "BROKEN", time.Second))
	assert.Equal(t, time.Second, GetDuration(durations, "NEGATIVE", time.Second))
	assert.Equal(t, time.Second, GetDuration(durations, "MISSING", time.Second))
}

func TestSplit(t *testing.T) {
	key, value := split("DSN=host=db user=app")
	assert.Equal(t, "DSN", key)
	assert.Equal(t, "host=db user=app", value)

	key, value = split("FLAG")
	assert.Equal(t, "FLAG", key)
	assert.Equal(t, "", value)
}
