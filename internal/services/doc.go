// Package services contains the shared error taxonomy, failure
// classification, and context plumbing used by the extraction service
// clients and the pipeline orchestrator.
package services
