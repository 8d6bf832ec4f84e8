// Package normalisers provides implementations of the Normaliser interface
// for transcript formats. Each normaliser knows how to extract spoken text
// from files with specific extensions.
//
// Normalisers are registered with the Registry at startup.
package normalisers
