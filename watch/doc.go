// Package watch keeps a vector store in sync with directories on disk.
//
// A Watcher ingests files with a supported extension when they are created
// or written and deletes their document when they are removed. Bursts of
// events for one file are coalesced, and ingestion is rate limited so a large
// copy into a watched directory does not flood the ingestion queue.
//
// Document IDs are derived from the absolute file path, so editing a file
// replaces its previous version.
package watch
