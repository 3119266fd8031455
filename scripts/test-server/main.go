// Command test-server serves the endpoints from internal/testserver for
// trying syncreq by hand:
//
//	go run ./scripts/test-server --addr :8080
//	syncreq run -i http://localhost:8080/redirect/7
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/syncreq/internal/log"
	"github.com/wesleyorama2/syncreq/internal/testserver"
)

func main() {
	cmd := &cobra.Command{
		Use:   "test-server",
		Short: "Serve endpoints for exercising syncreq",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			certFile, _ := cmd.Flags().GetString("cert")
			keyFile, _ := cmd.Flags().GetString("key")

			if err := log.SetLevel("info"); err != nil {
				return err
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           testserver.NewHandler(),
				ReadHeaderTimeout: 5 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			if certFile != "" {
				log.Info("serving https", "addr", addr, "cert", certFile)
				return server.ListenAndServeTLS(certFile, keyFile)
			}
			log.Info("serving http", "addr", addr)
			return server.ListenAndServe()
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().String("cert", "", "Serve TLS with this certificate file")
	cmd.Flags().String("key", "", "Private key for --cert")

	if err := cmd.Execute(); err != nil {
		log.Error("test server stopped", "error", err)
		os.Exit(1)
	}
}
