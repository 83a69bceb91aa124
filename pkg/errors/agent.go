package errors

// ErrMissingCatalog is returned when a dispatcher is asked to route a task
// before any agent registry has been attached.
type ErrMissingCatalog struct{ *Error }

// ErrMissingProvider is returned when an executor needs an LLM backend but
// none was configured.
type ErrMissingProvider struct{ *Error }

// ErrMissingTaskStore is returned when a task manager is constructed without
// a backing store.
type ErrMissingTaskStore struct{ *Error }

// ErrMissingTaskManager is returned when the transport layer is wired
// without a task manager to dispatch to.
type ErrMissingTaskManager struct{ *Error }
