// Package commands implements the netctl subcommands.
//
// Each command implements the Runner interface: Init parses its flags and
// loads the configuration, Run does the work, Name routes the command line.
//
// # Available Commands
//
//   - service: run the daemon (discovery, scheduled jobs, DNS server, REST API)
//   - devices: discover interfaces once and print them
//   - classify: show how interface names would be classified
//   - check-config: validate the configuration and print it with defaults
package commands
