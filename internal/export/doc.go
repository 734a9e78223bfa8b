// Package export turns the script bodies embedded in flow files into standalone
// JavaScript.
//
// Export writes one file per step below an output directory, laid out by the
// reversed segments of the flow name, with a strict-mode prologue whose wrapper
// parameters are the runtime symbols the body refers to. Convert renders the
// processor scripts of a flow file into one listing.
package export
