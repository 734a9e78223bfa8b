// Package pathutils normalizes user supplied directories such as audit roots
// and lint directories before they reach the file system.
package pathutils
