// Package county holds the declarative per-jurisdiction recording rules and
// the process-wide registry that resolves a jurisdiction key to its profile.
// All county differences are expressed here as data; the projection that acts
// on them lives in the build package.
package county
