// Package agent exposes the harness to MCP clients over stdio.
//
// The server offers four tools:
//
//	harness_list_suites         list suites and their cases
//	harness_run_suite           run suites and return the JSON report
//	harness_compare_screenshot  compare one produced image with a golden image
//	harness_clean_level         delete a level and, optionally, cached screenshots
//
// Tool failures are returned as MCP tool errors so the client can show them;
// protocol errors are reserved for malformed requests.
package agent
