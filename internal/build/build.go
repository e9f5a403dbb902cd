package build

// Version is the build version, overridden at link time via
// -ldflags="-X github.com/storacha/payme/internal/build.Version=...".
var Version = "development"
