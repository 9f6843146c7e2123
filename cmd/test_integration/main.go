package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	// Graph export only works when the server was started with MEMGRAPH_URI.
	exportGraph := os.Getenv("SMOKE_GRAPH") != ""

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	groupID := fmt.Sprintf("smoke-%d", time.Now().Unix())
	text := "The battery life is great but the screen is dim."

	steps := []struct {
		name     string
		method   string
		endpoint string
		payload  interface{}
	}{
		{"Health", "GET", "/healthz", nil},
		{"Window", "POST", "/window", map[string]interface{}{
			"text": text,
			"from": 4,
			"to":   16,
		}},
		{"Dataset", "POST", "/dataset", map[string]interface{}{
			"group_id": groupID,
			"records": []map[string]interface{}{{
				"id":   "1",
				"text": text,
				"aspects": []map[string]interface{}{
					{"term": "battery life", "polarity": "positive", "from": 4, "to": 16},
					{"term": "screen", "polarity": "negative", "from": 34, "to": 40},
				},
			}},
			"export_graph": exportGraph,
		}},
		{"Evaluate", "POST", "/evaluate", map[string]interface{}{
			"gold": []map[string]interface{}{{
				"text": text,
				"aspect_terms": []map[string]string{
					{"term": "battery life", "polarity": "positive"},
					{"term": "screen", "polarity": "negative"},
				},
			}},
			"predictions": []map[string]interface{}{{
				"aspect_terms": []map[string]string{
					{"term": "Battery life", "polarity": "positive"},
				},
			}},
			"export_graph": exportGraph,
		}},
	}

	for i, step := range steps {
		fmt.Printf("%d. %s...\n", i+1, step.name)
		if !sendRequest(baseURL, step.method, step.endpoint, step.payload) {
			fmt.Printf("FAILED: %s\n", step.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", step.name)
	}
}

func sendRequest(baseURL, method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
