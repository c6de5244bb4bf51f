// ABOUTME: Version constants for the waveout tone player
// ABOUTME: Reported in startup logs and the TUI header
package version

const (
	Version      = "0.1.0"
	Product      = "waveout"
	Manufacturer = "Sendspin"
)
