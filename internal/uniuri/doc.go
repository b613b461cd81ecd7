// Package uniuri generates cryptographically secure random strings, used for generated
// bootstrap passwords.
package uniuri
