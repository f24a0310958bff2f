// Package sysinfo exposes the OS identity lookups used by the dispatcher.
package sysinfo

// Info is the decoded utsname contract.
type Info struct {
	System  string
	Node    string
	Release string
	Version string
	Machine string
	Domain  string
}

// Provider answers the system-information queries. Implementations return a
// value or an error; callers decide how failures surface.
type Provider interface {
	HostName() (string, error)
	DomainName() (string, error)
	Uname() (Info, error)
}
