// Package pipeline orchestrates transcript acquisition. Strategies run
// sequentially in a fixed priority order until one produces usable text;
// every failure is classified and recorded so an exhausted run can report
// exactly what was tried.
package pipeline
