// Package pathutils expands user-relative paths read from configuration.
package pathutils
