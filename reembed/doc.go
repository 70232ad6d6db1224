// Package reembed recomputes the vectors of every stored point with the
// current embedding model.
//
// A run scrolls the vector store page by page, embeds each chunk's text,
// and upserts the new vectors under the same point IDs. After every page a
// checkpoint records the scroll cursor, so an interrupted run resumes where
// it stopped. Embedding calls are retried with exponential backoff.
package reembed
