// Package core contains the deployment engine's domain entities, guard
// logic, and orchestration service. Lower-level adapters must depend on
// this package; core must not depend on storage or transport adapters.
package core
