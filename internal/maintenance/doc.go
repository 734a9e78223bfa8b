// Package maintenance rewrites configuration files in place.
//
// The fix command runs the repair engine so relaxed files become strict JSON.
// The format command repairs, parses, and pretty prints a file with script
// bodies laid out as readable multi-line text.
package maintenance
