// Package main runs a demo WebSocket client for solve events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Run a small solve to get a solution id
	body := []byte(`{
		"matrix": [[0,10,15],[10,0,12],[15,12,0]],
		"jobs": [{"id":1,"location_index":1},{"id":2,"location_index":2}],
		"vehicles": [{"id":1,"start_index":0,"end_index":0}]
	}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/solve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	req.Header.Set("X-Role", "admin")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var solveResp struct {
		SolutionID string `json:"solutionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&solveResp); err != nil {
		log.Fatal(err)
	}
	if solveResp.SolutionID == "" {
		log.Fatal("no solution id returned")
	}
	log.Printf("Solution ID: %s", solveResp.SolutionID)

	// Connect WS to the solve event stream
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/solutions/" + solveResp.SolutionID + "/events/ws"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	hdr.Set("X-Role", "admin")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m map[string]any
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %v", m)
		}
	}()

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
