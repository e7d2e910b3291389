package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"blockfree/api/grpcserver"
	"blockfree/domain/register"
	"blockfree/infra/kafka"
	"blockfree/infra/metrics"
	"blockfree/jobs/broadcaster"
	"blockfree/service"
	"blockfree/snapshot"
)

const registerName = "quote"

func main() {
	var (
		addr        = flag.String("addr", ":50051", "gRPC listen address")
		metricsAddr = flag.String("metrics", ":9090", "metrics listen address, empty to disable")
		dataDir     = flag.String("data", "./snapshots", "snapshot directory, empty to disable")
		brokers     = flag.String("brokers", "", "comma separated Kafka brokers, empty to disable")
		topic       = flag.String("topic", "blockfree.quote", "Kafka topic for the change feed")
		interval    = flag.Duration("interval", 10*time.Millisecond, "write interval")
		client      = flag.String("kafka-client", "sarama", "Kafka client: sarama or kafka-go")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	obs, err := metrics.NewObserver(reg, registerName)
	if err != nil {
		log.Fatalf("metrics init failed: %v", err)
	}

	// ---------------- Snapshots ----------------

	var store *snapshot.Store
	if *dataDir != "" {
		store, err = snapshot.Open(snapshot.Config{Dir: *dataDir})
		if err != nil {
			log.Fatalf("snapshot store init failed: %v", err)
		}
		defer store.Close()
	}

	// ---------------- Change feed ----------------

	var pub broadcaster.Publisher
	if *brokers != "" {
		list := strings.Split(*brokers, ",")
		switch *client {
		case "sarama":
			pub, err = broadcaster.NewSaramaPublisher(list, *topic)
			if err != nil {
				log.Fatalf("sarama producer init failed: %v", err)
			}
		case "kafka-go":
			pub, err = kafka.NewProducer(kafka.Config{Brokers: list, Topic: *topic})
			if err != nil {
				log.Fatalf("kafka-go producer init failed: %v", err)
			}
		default:
			log.Fatalf("unknown kafka client %q", *client)
		}
	}

	// ---------------- Service ----------------

	svc, err := service.NewRegisterService(
		Quote{Symbol: "EURUSD", Bid: 10_000, Ask: 10_002},
		store,
		pub,
		service.Config{
			Name:     registerName,
			Register: register.Config{Observer: obs},
		},
	)
	if err != nil {
		log.Fatalf("service init failed: %v", err)
	}
	defer svc.Close()

	flushed := svc.Start(ctx)

	// ---------------- Writer ----------------

	// the only goroutine that publishes
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		r := svc.Reader()
		q, _ := r.Read()
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				q = q.next(now)
				svc.Publish(q)
			}
		}
	}()

	// ---------------- Metrics HTTP ----------------

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("[metrics] server exited: %v", err)
			}
		}()
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor))
	grpcserver.Register(grpcSrv, grpcserver.NewServer[Quote](registerName, svc.Reader()))

	go func() {
		<-ctx.Done()
		grpcSrv.GracefulStop()
	}()

	log.Printf("blockfree serving %q on %s", registerName, *addr)

	if err := grpcSrv.Serve(lis); err != nil {
		log.Printf("gRPC server exited: %v", err)
	}

	// ---------------- Shutdown ----------------

	stop()
	<-writerDone
	<-flushed
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if ver, ok := svc.Reader().Version(); ok {
		log.Printf("blockfree stopped at version %d", ver)
	}
}
