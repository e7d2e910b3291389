// Package broadcaster publishes a register's consistent snapshots to
// Kafka. It reads through an ordinary register.Reader and never touches
// the owner.
package broadcaster
