// Package paths provides the agent's filesystem locations.
//
// Locations follow the XDG Base Directory Specification so the agent
// behaves like any other desktop service:
//
//	$XDG_DATA_HOME/phishguard/
//	  └── identity.json   (client identity store)
//	$XDG_CONFIG_HOME/phishguard/
//	  ├── .env            (optional environment overrides)
//	  └── profiles/       (guard policy profiles)
//
// # Usage
//
//	import "github.com/GriffinCanCode/PhishGuard/backend/internal/shared/paths"
//
//	store, err := kvstore.NewFileStore(paths.IdentityFile())
//	profile := paths.Profile("strict")  // .../profiles/strict.yaml
package paths
