package grpcserver

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"blockfree/service"
)

const defaultReadTimeout = 100 * time.Millisecond

// Server adapts a register reader to gRPC.
type Server[T any] struct {
	name    string
	reader  service.VersionedReader[T]
	timeout time.Duration
}

func NewServer[T any](name string, reader service.VersionedReader[T]) *Server[T] {
	return &Server[T]{name: name, reader: reader, timeout: defaultReadTimeout}
}

// -------------------- Queries --------------------

// Get returns the latest consistent value as
// {"name": ..., "version": "<uint64>", "value": <json of T>}.
func (s *Server[T]) Get(
	ctx context.Context,
	_ *emptypb.Empty,
) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, ver, err := service.ReadConsistent(ctx, s.reader)
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	value, err := toValue(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":    structpb.NewStringValue(s.name),
		"version": structpb.NewStringValue(strconv.FormatUint(ver, 10)),
		"value":   value,
	}}, nil
}

// -------------------- Converters --------------------

func toValue[T any](v T) (*structpb.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode value")
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, errors.Wrap(err, "decode value")
	}
	return structpb.NewValue(generic)
}

// Decode unpacks a Get response into T and its version.
func Decode[T any](resp *structpb.Struct) (T, uint64, error) {
	var out T
	f := resp.GetFields()

	ver, err := strconv.ParseUint(f["version"].GetStringValue(), 10, 64)
	if err != nil {
		return out, 0, errors.Wrap(err, "parse version")
	}
	raw, err := json.Marshal(f["value"].AsInterface())
	if err != nil {
		return out, 0, errors.Wrap(err, "encode value")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, 0, errors.Wrap(err, "decode value")
	}
	return out, ver, nil
}

// LoggingInterceptor logs failed calls.
func LoggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("[gRPC] %s failed after %s: %v", info.FullMethod, time.Since(start), err)
	}
	return resp, err
}
