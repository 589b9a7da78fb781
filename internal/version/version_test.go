package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildStrings(t *testing.T) {
	assert.Regexp(t, `^LankaPortal dev \(commit: unknown, built: unknown, go: .+\)$`, Info())
	assert.Equal(t, "LankaPortal/dev", UserAgent())
	assert.Equal(t, "dev", Short())
}

func TestMap(t *testing.T) {
	assert.Equal(t, map[string]string{
		"version":    "dev",
		"git_commit": "unknown",
		"build_date": "unknown",
		"go_version": runtime.Version(),
	}, Map())
}
