package ports

// Watcher monitors a keyword list file and reports when its contents may have
// changed. Editors commonly save by writing a temp file and renaming it over
// the original, so the adapter watches the parent directory and filters events
// down to the target file. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with the absolute path
	// of the file after each (debounced) write, create or rename. The callback
	// may be invoked from any goroutine. Returns an error if the parent
	// directory doesn't exist or permissions are insufficient.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
