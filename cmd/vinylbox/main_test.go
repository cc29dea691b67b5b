package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohmeg/vinylbox/internal/infra/config"
	"github.com/ohmeg/vinylbox/internal/infra/logger"
)

func TestMergeLogConfig(t *testing.T) {
	tests := []struct {
		name    string
		log     config.LogConfig
		verbose bool
		logfile string
		want    logger.Config
	}{
		{
			name: "config values pass through",
			log:  config.LogConfig{Output: "player.log", Level: "warn"},
			want: logger.Config{Output: "player.log", Level: "warn"},
		},
		{
			name:    "verbose flag overrides configured level",
			log:     config.LogConfig{Output: "stdout", Level: "info"},
			verbose: true,
			want:    logger.Config{Output: "stdout", Level: "debug"},
		},
		{
			name:    "logfile flag overrides configured output",
			log:     config.LogConfig{Output: "stdout", Level: "info"},
			logfile: "flag.log",
			want:    logger.Config{Output: "flag.log", Level: "info"},
		},
		{
			name:    "both flags override",
			log:     config.LogConfig{Output: "file.log", Level: "error"},
			verbose: true,
			logfile: "flag.log",
			want:    logger.Config{Output: "flag.log", Level: "debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Log: tt.log}
			assert.Equal(t, tt.want, mergeLogConfig(cfg, tt.verbose, tt.logfile))
		})
	}
}

func TestMergeLogConfig_Defaults(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	lc := mergeLogConfig(cfg, false, "")
	assert.Equal(t, "stdout", lc.Output)
	assert.Equal(t, "info", lc.Level)
}
