// Package scheduler runs the daemon's periodic jobs (device rediscovery and
// connectivity checks) on cron specs.
package scheduler
