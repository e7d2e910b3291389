// Package register implements a block-free single-writer, multi-reader
// snapshot register.
//
// One Owner writes; any number of Readers take snapshots concurrently.
// A read samples the change indicator, copies the published generation
// and samples the indicator again. It succeeds only if nothing changed;
// otherwise it returns false and the caller decides whether to retry.
//
// Displaced generations are not reused until every reader that could
// have loaded them has left its read section (see infra/memory). Writers
// never wait: if readers lag, the pool simply grows.
package register
