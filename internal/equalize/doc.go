// Package equalize implements blind and decision-directed MIMO equalizers
// for coherent optical receivers: the constant-modulus algorithm (CMA),
// its multiuser extension (MU-CMA), the radius-directed equalizer (RDE),
// decision-directed LMS with joint gain/phase/bias tracking (DD-LMS), and
// a two-tap adaptive notch filter (ANF).
//
// Every equalizer satisfies the adaptive-filter contract in
// internal/af: Init produces a named state record, Update consumes one
// Frame per step and returns the successor state plus a diagnostic output,
// and Apply re-applies learned parameters to a data block statelessly.
//
// Inputs are windowed sample blocks of shape [taps][channels] built by
// FrameSignal, combined by the MIMO kernel
//
//	v[i] = sum_{j,t} w[i][j][t] * u[t][j]
//
// with a square [channels][channels][taps] weight tensor. All gradients
// are closed-form Wirtinger derivatives; there is no autodiff.
package equalize
