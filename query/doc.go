// Package query answers questions over the indexed documents.
//
// The Orchestrator retrieves relevant chunks, renders them together with
// the user's recent questions into a prompt, asks the generator for an
// answer, and records the exchange in conversation memory. Every call
// yields exactly one Result: Answered, NoResults or Failed.
//
// Only previous user questions are placed in the prompt. Earlier answers
// are left out so a wrong answer cannot reinforce itself.
package query
