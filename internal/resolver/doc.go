// Package resolver computes the base URL path an application is deployed
// under. Resolution is a pure function of the selected policy, an optional
// explicit override and the environment-mode indicator; it never fails and
// falls back to the root path whenever an input is absent or does not match.
package resolver
