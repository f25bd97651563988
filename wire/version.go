package wire

import (
	"runtime"
	"strings"
)

// VersionInfo identifies the runtime that produced or is consuming an
// envelope. Interpreter is a human-readable release string. Bytecode is
// only meaningful for comparing producer and consumer on bytecode
// reusability and is opaque otherwise: two runtimes with equal non-empty
// Bytecode strings may exchange compiled-function bodies.
type VersionInfo struct {
	Interpreter string `cbor:"interpreter"`
	Bytecode    string `cbor:"bytecode"`
}

// BytecodeCompatible reports whether bytecode produced under v is safe to
// execute under consumer. An empty version string on either side means the
// producing runtime could not be identified and is never compatible.
func (v VersionInfo) BytecodeCompatible(consumer VersionInfo) bool {
	return v.Bytecode != "" && v.Bytecode == consumer.Bytecode
}

// HostVersion derives a VersionInfo from the running Go toolchain, for
// embedders that do not supply their own. Bytecode compatibility is keyed
// on the major.minor release; patch releases share a bytecode format.
func HostVersion() VersionInfo {
	release := runtime.Version()
	return VersionInfo{
		Interpreter: release,
		Bytecode:    "go:" + majorMinor(release),
	}
}

// majorMinor trims the patch component from a release string like
// "go1.25.7". Development builds without a dotted version pass through
// unchanged.
func majorMinor(release string) string {
	parts := strings.Split(release, ".")
	if len(parts) < 2 {
		return release
	}
	return parts[0] + "." + parts[1]
}
