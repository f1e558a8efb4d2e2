//go:build linux
// +build linux

package tcp

const runtimeIsBSD = false
