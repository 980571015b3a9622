// package tasks implements long-running library operations.
//
// The core abstraction is ExportEngine, which writes every saved analysis to
// disk as a markdown bundle. Operations emit progress updates via channels
// for non-blocking status reporting to CLI/UI layers.
package tasks
