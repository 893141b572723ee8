// Package reporting renders suite runs for people and machines.
//
// ConsoleReporter prints progress as cases finish, QuietReporter prints only
// failures and a summary line, JSONReporter prints the final report as JSON
// and TUIReporter forwards progress to the interactive view. SaveReport writes
// the final report to disk.
package reporting
