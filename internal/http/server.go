package http

import "net/http"

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{Addr: addr, Handler: handler}
}

func Start(addr string, handler http.Handler) error {
	srv := NewServer(addr, handler)
	return srv.ListenAndServe()
}
