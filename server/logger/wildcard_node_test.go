package logger_test

import (
	"fmt"
	"testing"

	"github.com/sigrelay/sigrelay/server/logger"
	"github.com/stretchr/testify/assert"
)

func TestWildcardNode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logger.Config(nil), logger.NewConfig(nil))

	config := logger.NewConfig(logger.ConfigMap{
		"a":         logger.Level(1),
		"a:b":       logger.Level(2),
		"a:b:*":     logger.Level(3),
		"a:*:c":     logger.Level(4),
		"*:d":       logger.Level(5),
		"":          logger.Level(7),
		"aa:**:cc":  logger.Level(8),
		"**:left":   logger.Level(9),
		"right:**":  logger.Level(10),
		"a:b:c:d:e": logger.Level(6),
	})

	type testCase struct {
		namespace string
		wantLevel logger.Level
	}

	testCases := []testCase{
		{"", 7},
		{"something:else", 7},
		{"a", 1},
		{"a:b", 2},
		{"a:b:c", 3},
		{"a:x:c", 4},
		{"a:x:y:c", 7},
		{"h:d", 5},
		{"a:b:c:d:e", 6},
		{"aa:cc", 8},
		{"aa:xx:yy:cc", 8},
		{"left", 9},
		{"xx:yy:left", 9},
		{"right", 10},
		{"right:xx:yy", 10},
	}

	for i, tc := range testCases {
		descr := fmt.Sprintf("test case: %d, namespace: %q", i, tc.namespace)

		assert.Equal(t, tc.wantLevel, config.LevelForNamespace(tc.namespace), descr)
	}
}
