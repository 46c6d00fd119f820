package main

import "net/http"

type gatewayStatus interface {
	Ready() bool
}

func startHealthCheckServer(addr string, gateway gatewayStatus) {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !gateway.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	http.ListenAndServe(addr, mux)
}
