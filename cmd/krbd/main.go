package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/kiturami"
	"github.com/joshp123/kiturami/internal/bridge"
	"github.com/joshp123/kiturami/internal/pace"
	"github.com/joshp123/kiturami/internal/server"
	"github.com/joshp123/kiturami/internal/session"
)

func main() {
	httpAddr := envOrDefault("KRB_HTTP_ADDR", ":8080")

	cfg, err := kiturami.ConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := sessionStoreFromEnv()
	if err != nil {
		log.Fatalf("session store: %v", err)
	}

	client, err := kiturami.NewClientWithStore(cfg, store)
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	api := kiturami.NewAPI(client)

	registry := prometheus.NewRegistry()
	registry.MustRegister(kiturami.NewMetricsCollector(api))
	for _, collector := range pace.MetricsCollectors() {
		registry.MustRegister(collector)
	}
	for _, collector := range session.MetricsCollectors() {
		registry.MustRegister(collector)
	}
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kiturami_build_info",
		Help: "Build information",
	}, func() float64 { return 1 }))

	if host := os.Getenv("KRB_MQTT_HOST"); host != "" {
		br, err := bridge.New(bridgeConfigFromEnv(host), api)
		if err != nil {
			log.Fatalf("mqtt bridge: %v", err)
		}
		if err := br.Start(); err != nil {
			log.Fatalf("mqtt subscribe: %v", err)
		}
		defer br.Close()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HealthHandler)
	mux.Handle("/status", server.StatusHandler(client))
	mux.Handle("/metrics", server.MetricsHandler(registry))

	httpServer := server.NewHTTPServer(httpAddr, mux)
	log.Printf("krbd listening on %s", httpAddr)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("http serve: %v", err)
	}
}

func sessionStoreFromEnv() (*session.Store, error) {
	statePath := os.Getenv("KRB_STATE_FILE")
	if statePath == "" {
		return nil, nil
	}

	var blob session.BlobStore
	if endpoint := os.Getenv("KRB_BLOB_ENDPOINT"); endpoint != "" {
		s3, err := session.NewS3Store(session.BlobConfig{
			Endpoint:      endpoint,
			Bucket:        os.Getenv("KRB_BLOB_BUCKET"),
			Prefix:        os.Getenv("KRB_BLOB_PREFIX"),
			AccessKeyFile: os.Getenv("KRB_BLOB_ACCESS_KEY_FILE"),
			SecretKeyFile: os.Getenv("KRB_BLOB_SECRET_KEY_FILE"),
			Region:        os.Getenv("KRB_BLOB_REGION"),
		})
		if err != nil {
			return nil, err
		}
		blob = s3
	}

	return session.NewStore(statePath, blob)
}

func bridgeConfigFromEnv(host string) bridge.Config {
	port, _ := strconv.Atoi(envOrDefault("KRB_MQTT_PORT", "1883"))
	return bridge.Config{
		BrokerHost:  host,
		BrokerPort:  port,
		TLS:         os.Getenv("KRB_MQTT_TLS") == "true",
		Username:    os.Getenv("KRB_MQTT_USERNAME"),
		Password:    os.Getenv("KRB_MQTT_PASSWORD"),
		TopicPrefix: os.Getenv("KRB_MQTT_TOPIC_PREFIX"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
