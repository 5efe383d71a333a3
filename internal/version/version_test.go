package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrings(t *testing.T) {
	assert.Equal(t, "dev (commit: unknown)", Full())
	assert.Equal(t, "dev (commit: unknown, unknown/unknown)", FullWithPlatform())
	assert.Equal(t, "glmetrics/dev", UserAgent())
}
