package config

// Build metadata, set with -ldflags at release time:
//
//	go build -ldflags "-X omc/internal/config.version=1.2.3 \
//	    -X omc/internal/config.commit=$(git rev-parse --short HEAD)" ./cmd/api
//
// The product version is what the versions register reports as "OMC v{x}".
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo returns the linker-injected build metadata.
func NewBuildInfo() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime}
}
