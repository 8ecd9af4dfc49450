// ABOUTME: Version constants for the application
// ABOUTME: Single place the build identity is defined
package version

const (
	Version      = "0.1.0"
	Product      = "Bittu Voice Assistant"
	Manufacturer = "Bittu AI"
)
