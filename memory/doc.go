// Package memory keeps a bounded conversation history per user.
//
// A Store is injected into the query orchestrator; there is no package
// level state. Histories are FIFO: once a user reaches the capacity, each
// new turn evicts the oldest one.
package memory
