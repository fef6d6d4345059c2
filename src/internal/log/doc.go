// Package log provides simple leveled logging for netctl.
//
// Output is colored with ANSI prefixes ([DBG], [INF], [WRN], [ERR]). Errors
// go to stderr and everything else to stdout unless SetForceStdErr is used.
// The level is set from the daemon configuration with SetLevel, or with
// SetVerbose from the -verbose flag.
//
//	log.Infof("Discovered %d devices", n)
//	log.Debugf("Probe for %s: driver=%q", name, driver)
//
// All functions are safe for concurrent use.
package log
