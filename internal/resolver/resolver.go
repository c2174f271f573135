package resolver

import "github.com/eugenenazirov/deployconf/internal/environment"

const (
	// RootPath is returned whenever no other rule applies.
	RootPath = "/"
	// DefaultFixedPath is the project-pages sub-path the application ships under.
	DefaultFixedPath = "/3D-solar-system-nuxt-three.js/"
	// DefaultProductionTag is the mode indicator value that denotes production.
	DefaultProductionTag = "production"
	// DefaultOverrideKey names the environment variable carrying an explicit base path.
	DefaultOverrideKey = "NUXT_APP_BASE_URL"
	// DefaultModeKey names the environment variable carrying the mode indicator.
	DefaultModeKey = "NODE_ENV"
)

// Inputs are the values a policy may consult.
type Inputs struct {
	Override string
	Mode     string
	ModeSet  bool
}

// Resolver evaluates a single policy. The zero value resolves to RootPath.
type Resolver struct {
	Policy        Policy
	FixedPath     string
	ProductionTag string
}

// New returns a Resolver for policy using the default fixed path and production tag.
func New(policy Policy) Resolver {
	return Resolver{
		Policy:        policy,
		FixedPath:     DefaultFixedPath,
		ProductionTag: DefaultProductionTag,
	}
}

// Resolve returns the base URL path for in. It is total and has no side effects.
func (r Resolver) Resolve(in Inputs) string {
	switch r.Policy {
	case PolicyFixed:
		return r.fixedOrRoot()
	case PolicyOverrideWithFallback:
		if in.Override != "" {
			return in.Override
		}
		return RootPath
	case PolicyEnvironmentConditional:
		if in.ModeSet && r.ProductionTag != "" && in.Mode == r.ProductionTag {
			return r.fixedOrRoot()
		}
		return RootPath
	default:
		return RootPath
	}
}

func (r Resolver) fixedOrRoot() string {
	if r.FixedPath == "" {
		return RootPath
	}
	return r.FixedPath
}

// InputsFrom reads the override and mode indicator from src. Empty keys are
// treated as absent variables.
func InputsFrom(src environment.Source, overrideKey, modeKey string) Inputs {
	var in Inputs
	if src == nil {
		return in
	}
	if overrideKey != "" {
		if v, ok := src.Lookup(overrideKey); ok {
			in.Override = v
		}
	}
	if modeKey != "" {
		in.Mode, in.ModeSet = src.Lookup(modeKey)
	}
	return in
}
