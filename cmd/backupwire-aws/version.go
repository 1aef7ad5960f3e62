package main

import "runtime/debug"

// version is stamped by releases: -ldflags "-X main.version=v1.0.0".
var version = ""

// getVersion prefers the ldflags-stamped version, falls back to module
// build info for "go install @version" binaries, and reports "dev" for
// local builds.
func getVersion() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}

	return "dev"
}
