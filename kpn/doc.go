// Package kpn models a Kahn Process Network application as an in-memory,
// immutable Graph built via Builder.
//
//	go get github.com/kpnflow/dse/kpn
package kpn
