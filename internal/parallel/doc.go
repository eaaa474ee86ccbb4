// Package parallel runs index-range work on a fixed set of goroutines.
//
// Each worker owns a queue of chunks. A worker whose queue is empty
// steals chunks from the others, so uneven chunks still keep every
// worker busy.
package parallel
