// Package networking talks to the kernel through netlink.
//
// LinkController implements the interface collaborator used by device
// discovery and device configuration: listing links, reading addresses,
// flags and counters, and changing link state, MTU, MAC and addresses.
// KernelRoutes applies registry routes to a kernel routing table when
// kernel application is enabled in the configuration.
//
// Failed kernel calls are reported as COMMAND_FAILED errors whose command is
// the equivalent iproute2 invocation, so that operators can reproduce them:
//
//	[COMMAND_FAILED] command failed (command: ip link set dev eth0 mtu 9000, stderr: invalid argument)
package networking
