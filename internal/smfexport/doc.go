// Package smfexport renders extracted MIDI tracks as a Standard MIDI File
// so notes recovered from a project can be auditioned in any sequencer.
package smfexport
