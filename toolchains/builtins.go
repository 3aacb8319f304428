package toolchains

type BuiltInToolchainType = string

const (
	PythonToolchainType BuiltInToolchainType = "python"
)

// RegisterBuiltins registers all built-in toolchains by default
// or only the specific ones if keys are provided
func RegisterBuiltins(toolchains ...BuiltInToolchainType) {
	if len(toolchains) == 0 {
		// Include all built-in toolchains here when adding implementations
		toolchains = append(toolchains, PythonToolchainType)
	}

	for _, key := range toolchains {
		switch key {
		case PythonToolchainType:
			RegisterPython()
		}
	}
}
