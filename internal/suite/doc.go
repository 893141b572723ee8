// Package suite loads editor test suites from YAML and runs them.
//
// A suite targets one level and lists its cases in the order they must run;
// later cases may rely on a level an earlier case produced. Suites themselves
// are independent and run concurrently, bounded by the configured parallelism.
//
// For every case the runner checks precursors, cleans stale artifacts, launches
// the editor through a harness.Adapter, compares screenshots and finally tears
// down the level when the case asks for it. The outcome of each case is one of
// PASSED, FAILED, ERROR or SKIPPED.
package suite
