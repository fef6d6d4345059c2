// Package dnsserver implements the DNS domain: a forwarding DNS server whose
// forwarder list can be edited at runtime, an optional iptables redirect of
// port 53 to the server, and the DNS based connectivity probe.
//
// Queries are forwarded to the forwarders in order; the first answer wins.
// When every forwarder fails the client receives SERVFAIL.
package dnsserver
