package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"lazyiter"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestMain_Success(t *testing.T) {
	withArgs(t, "repeat", "3", "--no-color")
	assert.Equal(t, 0, Main())
}

func TestMain_Failure(t *testing.T) {
	withArgs(t, "forever", "--until", "-1", "--no-color")
	assert.Equal(t, 1, Main())
}
