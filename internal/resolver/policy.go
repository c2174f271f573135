package resolver

import (
	"fmt"
	"strings"
)

// Policy selects how the base URL path is derived.
type Policy int

const (
	// PolicyFixed always returns the fixed deployment path.
	PolicyFixed Policy = iota + 1
	// PolicyOverrideWithFallback returns the explicit override, or the root path.
	PolicyOverrideWithFallback
	// PolicyEnvironmentConditional returns the fixed path in production, the root path otherwise.
	PolicyEnvironmentConditional
)

var policyNames = map[Policy]string{
	PolicyFixed:                  "fixed",
	PolicyOverrideWithFallback:   "overrideWithFallback",
	PolicyEnvironmentConditional: "environmentConditional",
}

// Policies lists every recognised policy in declaration order.
func Policies() []Policy {
	return []Policy{PolicyFixed, PolicyOverrideWithFallback, PolicyEnvironmentConditional}
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Valid reports whether p is one of the recognised policies.
func (p Policy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

// ParsePolicy accepts the canonical camelCase name as well as kebab-case and
// snake_case spellings, ignoring case.
func ParsePolicy(raw string) (Policy, error) {
	key := normalizeName(raw)
	for _, p := range Policies() {
		if normalizeName(p.String()) == key {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func normalizeName(raw string) string {
	replacer := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
}
