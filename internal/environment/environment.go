// Package environment abstracts the process environment so that callers can
// resolve configuration from os.Environ in production and from plain maps in
// tests or API requests.
package environment

import "os"

// Source looks up a variable by name, reporting whether it was set.
type Source interface {
	Lookup(key string) (string, bool)
}

type osSource struct{}

// OS returns a Source backed by the process environment.
func OS() Source {
	return osSource{}
}

func (osSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Map is a Source backed by an in-memory map. A nil Map has no variables.
type Map map[string]string

// Lookup implements Source.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
