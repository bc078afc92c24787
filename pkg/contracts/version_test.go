package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, DataFormatVersion, info.DataFormat)
	assert.Equal(t, APIVersion, info.APIVersion)
}

func TestGetFullVersionString(t *testing.T) {
	s := GetFullVersionString("occupancy")

	assert.True(t, strings.HasPrefix(s, "occupancy v"+Version))
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
}
