// Package config defines configuration structures for the xossdb CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (XOSSDB_ prefix, with an optional .env file)
//   - YAML configuration file in the state directory
//
// # Structure
//
//	type Config struct {
//	    DownloadDir        string
//	    MaxConcurrentTasks int
//	    StateDir           string
//	    LastDatabase       string
//	    Log                LogConfig
//	    HTTP               HTTPConfig
//	}
//
//	type HTTPConfig struct {
//	    Timeout       time.Duration
//	    HeadTimeout   time.Duration
//	    RetryAttempts int
//	    RetryBackoff  time.Duration
//	}
package config
