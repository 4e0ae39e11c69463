// Package supervisor runs background tasks under structured cancellation.
//
// A Supervisor owns the pooled *http.Client shared by every adapter and
// a registry of running tasks. Each task gets its own context; cancelling
// a scope, all tasks, or stopping the supervisor cancels those contexts
// and waits for the tasks to return. Finished tasks remove themselves
// from the registry before their Done channel closes, so a task observed
// as done is never counted as active.
package supervisor
