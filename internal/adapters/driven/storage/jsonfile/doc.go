// Package jsonfile provides a session store that keeps each session as JSON files.
//
// The layout under the data directory is:
//
//	processed/session_<id>.json     session summary
//	processed/documents_<id>.json   normalised documents
//	processed/embeddings_<id>.json  embedding records
//	raw/<id>/<path>                 archived uploads (see Archive)
//
// Documents and embeddings are written as two-space indented JSON arrays so the
// files stay readable and diffable. Every write goes to a temporary file that is
// renamed into place while holding an exclusive gofrs/flock lock; reads take a
// shared lock.
package jsonfile
