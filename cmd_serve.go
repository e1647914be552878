// cmd_serve.go - serve subcommand: HTTP S3M-to-WAV conversion endpoint

package main

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an HTTP S3M-to-WAV conversion endpoint",
	Long:  `POST an S3M module body to /convert and receive the rendered WAV.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve(serveAddr)
	},
}

func handleConvert(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	mod, err := ParseS3M(data, logDiag{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pcm := NewRenderer(mod).Render()

	var buf wavBuffer
	if err := encodeWAV(&buf, pcm, mod.SampleRate); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", fmt.Sprint(len(buf.Bytes())))
	w.Write(buf.Bytes())
}

func serve(addr string) {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", handleConvert).Methods("POST")
	handler := cors.Default().Handler(router)

	log.Printf("listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
