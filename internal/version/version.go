// ABOUTME: Version constants
// ABOUTME: Build identity reported in logs
package version

const (
	// Version is the software version
	Version = "0.2.0"

	// Product is the product name
	Product = "jacktape"

	// Manufacturer identifies the project
	Manufacturer = "jacktape project"
)
