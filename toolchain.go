package weatherline

// Toolchain defines how one target ecosystem provisions and uses an isolated
// environment. Instances are stateless command builders; the bootstrap flow
// decides when each command runs.
//
// Command paths may be project-relative (commands carry a working directory);
// activation must receive the absolute environment path since its bindings
// outlive any working directory.
type Toolchain interface {
	Name() string

	// Requires lists the binaries that must be resolvable on PATH before
	// any bootstrap step can work
	Requires() []string

	// CreateCommand provisions a new isolated environment rooted at envDir
	CreateCommand(envDir string) Command

	// InstallCommand installs every dependency listed in the manifest file
	// using the environment's own installer
	InstallCommand(envDir, manifestPath string) Command

	// LaunchCommand starts the application entry point with the
	// environment's interpreter
	LaunchCommand(envDir, entry string, args []string) Command

	// Activate returns a copy of base with the environment bound in, so
	// commands launched with it resolve the isolated interpreter and its
	// packages ahead of system-wide ones. Process-local; nothing persists.
	Activate(envDir string, base []string) []string
}
