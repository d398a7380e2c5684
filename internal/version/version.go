package version

// Version is the current version of the argo-fx agent.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-fx/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// GetVersion returns the current version of the agent.
func GetVersion() string {
	return Version
}
