// Package design computes biquad coefficients from audio filter
// parameters using the RBJ Audio EQ Cookbook formulas.
//
// Every designer returns zero coefficients (silence) for frequencies outside
// the open interval (0, sampleRate/2); callers decide how to treat those.
package design
