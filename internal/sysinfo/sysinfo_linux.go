package sysinfo

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// System queries the running kernel through the uname syscall.
type System struct{}

func (System) HostName() (string, error) {
	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname lookup: %w", err)
	}
	return name, nil
}

func (System) DomainName() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("domain name lookup: %w", err)
	}
	return unix.ByteSliceToString(uts.Domainname[:]), nil
}

func (System) Uname() (Info, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return Info{}, fmt.Errorf("uname lookup: %w", err)
	}
	return Info{
		System:  unix.ByteSliceToString(uts.Sysname[:]),
		Node:    unix.ByteSliceToString(uts.Nodename[:]),
		Release: unix.ByteSliceToString(uts.Release[:]),
		Version: unix.ByteSliceToString(uts.Version[:]),
		Machine: unix.ByteSliceToString(uts.Machine[:]),
		Domain:  unix.ByteSliceToString(uts.Domainname[:]),
	}, nil
}
