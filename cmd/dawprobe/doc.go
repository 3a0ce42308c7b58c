// Command dawprobe extracts musical metadata from DAW project files:
// Ableton Live sets, FL Studio projects, and Logic Pro bundles.
package main
