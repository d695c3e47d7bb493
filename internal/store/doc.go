// Package store writes received files to disk.
//
// A FileSink streams into a temporary file next to the destination and
// renames it into place only on Commit, so an interrupted or rejected
// transfer never leaves a partial file under the real name. Existing files
// are not overwritten unless the sink was created with force.
package store
