// Package config defines configuration for the mdfetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (MDFETCH_ prefix), optionally from a .env file
//   - YAML configuration file
//
// Later sources override earlier ones in the order Default, file,
// environment, flags.
//
// # Structure
//
//	type Config struct {
//	    Repository  string
//	    Output      string
//	    Patterns    []string
//	    Username    string
//	    Password    string
//	    Timeout     time.Duration
//	    Description string
//	    Quiet       bool
//	    NoChecksum  bool
//	}
//
// # File Format
//
//	repository: ftp://ftp.imp.fu-berlin.de/pub/cmb-data/
//	output: notebooks/data
//	patterns:
//	  - pentapeptide*
//	  - alanine*
//	timeout: 1m
package config
