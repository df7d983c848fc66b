package botflow

// Version is the library version, overridable at build time with
// -ldflags "-X github.com/mistermakeithappen/jobconversiontracker-sub000.Version=...".
var Version = "0.1.0"
