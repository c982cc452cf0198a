// Package config loads and validates the satchel configuration.
//
// Configuration is read with Viper from a config file named "config"
// in the current directory or the satchel XDG config directory, in any
// format Viper understands (YAML, JSON, TOML). Environment variables
// prefixed SATCHEL_ override file values.
//
// # Configuration surface
//
//	count: 7                      # archives kept per destination
//	work_path: ""                 # archive staging dir (default: XDG state)
//	sources: [/etc, /home/me/docs]
//	archiver:
//	  command: 7za
//	  extension: .7z
//	retry:
//	  max_attempts: 5
//	  delay: 1s
//	destination:
//	  type: directory             # directory | drive | both
//	  directory_config:
//	    output_path: /mnt/backups
//	  drive_config:
//	    drive_name: BACKUP1       # volume label, max 31 characters
//	    sub_directory: backups
//	    poll_interval: 10s
//	    wait_timeout: 0s          # 0 = wait until cancelled
//
// The loaded [Config] is an immutable per-run value: it is constructed
// once by the command layer and passed by parameter into the engine.
// Nothing reads process-wide configuration state after startup.
//
// [Validate] returns every violation at once as a slice of typed errors
// so the operator can fix the file in one pass.
package config
