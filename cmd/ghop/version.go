package main

// Version information (set via ldflags during build).
var (
	version = "0.1.0"
	commit  = "unknown"
)
