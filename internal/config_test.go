package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal(8080, config.Port)
	req.Equal(2*time.Second, config.SinkTimeout)
	req.True(config.EnableModeration)
	req.Empty(config.BadgerFilepath)
	req.Nil(config.LimitActivity)
	req.NoError(config.Validate())
}

func TestConfig_From_Environment(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LIMIT_ACTIVITY", "25")
	t.Setenv("ALLOWED_ORIGINS", "school.example, localhost:5173,")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal(9090, config.Port)
	req.NotNil(config.LimitActivity)
	req.Equal(25, *config.LimitActivity)
	req.Equal([]string{"school.example", "localhost:5173"}, config.Origins())
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		BufferSize:           1,
		ConnectionBufferSize: 1,
		SinkTimeout:          time.Second,
		WriteTimeout:         time.Second,
		PingInterval:         time.Second,
		PongWait:             time.Minute,
		MetricInterval:       time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "ping interval longer than pong wait", mutate: func(c *Config) { c.PingInterval = 2 * time.Minute }},
		{name: "zero ping interval", mutate: func(c *Config) { c.PingInterval = 0 }},
		{name: "negative ping interval", mutate: func(c *Config) { c.PingInterval = -time.Second }},
		{name: "zero metric interval", mutate: func(c *Config) { c.MetricInterval = 0 }},
		{name: "zero write timeout", mutate: func(c *Config) { c.WriteTimeout = 0 }},
		{name: "zero sink timeout", mutate: func(c *Config) { c.SinkTimeout = 0 }},
		{name: "zero buffer", mutate: func(c *Config) { c.BufferSize = 0 }},
		{name: "zero activity limit", mutate: func(c *Config) { c.LimitActivity = new(int) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)

			require.Error(t, config.Validate())
		})
	}
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("##")
	req.Error(err)
}
