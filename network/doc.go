// Package network provides Network implementations for reaching the origin.
package network
