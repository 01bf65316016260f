// Package conv provides streaming FFT convolution for block-based
// processing.
//
// [StreamingOverlapAdd] keeps the convolution tail between blocks so that
// consecutive calls produce one continuous output stream.
package conv
