package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	prev := Version
	t.Cleanup(func() { Version = prev })

	Version = "v0.3.0"
	assert.Equal(t, "facetrack v0.3.0 (commit unknown, built unknown)", String("facetrack"))
}
