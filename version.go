package ambience

// Version is the current version of the ambience library
const Version = "1.0.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// Protocol is the controller line protocol revision spoken by Contract
	Protocol string
	// Modes lists the supported supervision strategies
	Modes []string
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version:  Version,
		Protocol: "ambience-ctl/1",
		Modes:    []string{ModeSimple.String(), ModeContract.String()},
	}
}
