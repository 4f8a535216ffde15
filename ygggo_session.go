package ygggo_session

// Version returns the current library version.
func Version() string { return "v0.1.0" }
