package core

import (
	"github.com/git-pkgs/versioncheck/client"
)

// Type aliases so sources only need to import core.
type (
	Client = client.Client
	Option = client.Option
)

// Function aliases.
var (
	DefaultClient  = client.DefaultClient
	NewClient      = client.NewClient
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
)
