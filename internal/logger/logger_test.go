package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name         string
		verbose      bool
		debugEnabled bool
	}{
		{name: "default logs info and above", verbose: false, debugEnabled: false},
		{name: "verbose logs debug", verbose: true, debugEnabled: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.verbose)
			require.NoError(t, err)
			core := l.Desugar().Core()
			assert.Equal(t, tc.debugEnabled, core.Enabled(zapcore.DebugLevel))
			assert.True(t, core.Enabled(zapcore.InfoLevel))
		})
	}
}
