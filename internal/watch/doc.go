// Package watch reruns work when source files change.
//
// Watcher watches the directories containing the given sources, so files
// replaced by editors (write to temp, rename over) are still seen. Events
// for the same file are debounced and the callback runs once the file has
// been quiet for the debounce window.
package watch
