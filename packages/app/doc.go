// Package app is the host application specs run against.
//
// An Application owns a router (or any http.Handler), hands out specs bound
// to itself, and provides both transports: in memory through the handler and
// live through a loopback server started on first use.
package app
