package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/pkg/config"
)

func TestOpenStore(t *testing.T) {
	st, closeFn, err := OpenStore(&config.Config{Database: config.DatabaseConfig{Driver: "memory"}})
	require.NoError(t, err)
	assert.NoError(t, st.Health(context.Background()))
	assert.NoError(t, closeFn())

	_, _, err = OpenStore(&config.Config{Database: config.DatabaseConfig{Driver: "sqlite"}})
	assert.Error(t, err)
}
