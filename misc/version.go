// Package misc exposes build time information set by the linker.
package misc

var (
	appName = "unbind"
	version = "development"
	gitHash = "unknown"
)

// GetAppName returns short program name to be used in logs and names of auxiliary files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version set during the build.
func GetVersion() string {
	return version
}

// GetGitHash returns hash of the git commit the program was built from.
func GetGitHash() string {
	return gitHash
}
