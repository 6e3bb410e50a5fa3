// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The Evrmore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version holds the version of the evrlib command line tools.
package version

import (
	"fmt"
	"strings"
)

const (
	// preReleaseAlphabet lists the characters semantic versioning allows in
	// a pre-release identifier.
	preReleaseAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

	// buildAlphabet additionally allows dots between build identifiers.
	buildAlphabet = preReleaseAlphabet + "."
)

// Semantic version of the tools.
const (
	Major uint = 0
	Minor uint = 1
	Patch uint = 0
)

var (
	// PreRelease may be set at link time with
	// '-ldflags "-X github.com/evrmore/evrlib/internal/version.PreRelease=rc1"'.
	// Characters outside preReleaseAlphabet are dropped.
	PreRelease = "beta"

	// BuildMetadata may be set at link time the same way, typically to a
	// commit hash.  Characters outside buildAlphabet are dropped.
	BuildMetadata = ""
)

// String returns the version as major.minor.patch followed by the
// pre-release and build metadata when they are set.
func String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", Major, Minor, Patch)
	if pre := filterAlphabet(PreRelease, preReleaseAlphabet); pre != "" {
		b.WriteString("-" + pre)
	}
	if build := filterAlphabet(BuildMetadata, buildAlphabet); build != "" {
		b.WriteString("+" + build)
	}
	return b.String()
}

// filterAlphabet returns str without the runes missing from alphabet.
func filterAlphabet(str, alphabet string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(alphabet, r) {
			return r
		}
		return -1
	}, str)
}
