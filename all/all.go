// Package all imports all supported version sources.
//
// Import this package for its side effects to register every source:
//
//	import (
//		"github.com/git-pkgs/versioncheck"
//		_ "github.com/git-pkgs/versioncheck/all"
//	)
//
//	// Now all sources are available
//	sources := versioncheck.SupportedSources()
//	// ["npm", "pnpm"]
package all

import (
	_ "github.com/git-pkgs/versioncheck/internal/npm"
	_ "github.com/git-pkgs/versioncheck/internal/pnpm"
)
