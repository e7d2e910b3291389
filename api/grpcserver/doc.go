// Package grpcserver exposes a register over gRPC.
//
// Get answers with the latest consistent value, retrying torn reads until
// a short deadline passes, after which it fails with codes.Unavailable.
package grpcserver
