// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gridreduce

import (
	"runtime/debug"
)

const root = "github.com/LynnColeArt/gridreduce"

// Version returns the module version gridreduce was built at and its
// checksum, or "(devel)" when built from its own source tree. The returned
// values are only valid in binaries built with module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	if b.Main.Path == root {
		return b.Main.Version, b.Main.Sum
	}
	for _, m := range b.Deps {
		if m.Path != root {
			continue
		}
		if r := m.Replace; r != nil {
			if r.Version == "" {
				return m.Version + "=>" + r.Path, r.Sum
			}
			return m.Version + "=>" + r.Version, r.Sum
		}
		return m.Version, m.Sum
	}
	return "", ""
}
