package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDString(t *testing.T) {
	assert.Equal(t, "1709294400000", IDString(1709294400000))
	assert.Equal(t, "0", IDString(0))
}
