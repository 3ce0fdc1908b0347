package unzip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ModeOf(t *testing.T) {
	// zero attribute word: plain rw-r--r-- regular file
	assert.EqualValues(t, 33188, modeOf(0))

	// stored unix modes survive
	assert.EqualValues(t, 0100755, modeOf(0100755<<16))
	assert.EqualValues(t, 0100600, modeOf(0100600<<16))

	// directories keep their type bits
	assert.EqualValues(t, 0040755, modeOf(0040755<<16))

	// setuid/setgid/sticky are dropped
	assert.EqualValues(t, 0100755, modeOf(0104755<<16))
	assert.EqualValues(t, 0100644, modeOf(0103644<<16))

	// the lower half of the attribute word (dos attributes) is ignored
	assert.EqualValues(t, 33188, modeOf(0x20))
}
