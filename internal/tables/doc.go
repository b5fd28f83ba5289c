// Package tables contains the coded-value lookup tables of the FLAC frame
// header: block size, sample rate and bit depth.
//
// Source: RFC 9639 §9.1.1 - §9.1.4
package tables
