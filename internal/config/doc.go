// Package config provides configuration management for edharness.
//
// Configuration is layered. Each layer is a YAML file and later layers override
// earlier ones field by field:
//
//  1. Defaults compiled into the binary
//  2. User configuration (~/.config/edharness/config.yaml)
//  3. Project configuration (./.edharness/config.yaml)
//  4. An explicit file passed with --config
//
// # Configuration Structure
//
//	workspace:
//	  engineRoot: /src/o3de
//	  project: AtomTest
//	  platformCache: /src/o3de/AtomTest/Cache/pc
//	  screenshotSubfolder: user/PythonTests/Automated/Screenshots
//
//	editor:
//	  binary: /src/o3de/build/bin/profile/Editor
//	  args: ["--autotest_mode", "--skipWelcomeScreenDialog", "--rhi=dx12"]
//	  scriptFlag: --runpythontest
//	  argsFlag: --runpythonargs
//	  env:
//	    QT_QPA_PLATFORM: offscreen
//
//	golden:
//	  root: GoldenImages # relative to the suite's script directory
//	  platform: Windows
//	  threshold: 0.99
//
//	logging:
//	  level: info
//	  dir: .edharness/logs
//
//	runner:
//	  suitesPath: suites
//	  scriptsDir: Gem/PythonTests/Automated/test_suites/periodic
//	  parallel: 1
//	  failFast: false
//	  reportPath: .edharness/reports
//
// The workspace section is the only shared state a test case sees; it is passed
// explicitly to the artifact and suite packages rather than read globally.
package config
