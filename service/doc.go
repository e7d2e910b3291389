// Package service wires a register to its supporting jobs: checkpoint
// and restore through snapshot, the Kafka change feed through
// broadcaster, and a caller-side consistent-read helper.
//
// It is decoupled from network transports like gRPC.
package service
