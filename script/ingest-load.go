package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// IngestRequest is the body of POST /logs
type IngestRequest struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// IngestResponse is the body returned by POST /logs
type IngestResponse struct {
	Accepted bool   `json:"accepted"`
	Level    string `json:"level"`
}

// LogsResponse is the body returned by GET /logs
type LogsResponse struct {
	Count int `json:"count"`
}

// TestResult contains metrics for a single request
type TestResult struct {
	Level        string
	Accepted     bool
	ResponseTime time.Duration
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	sync.Mutex
	TotalRequests int
	Succeeded     int
	Failed        int
	Accepted      int
	TotalTime     time.Duration
	ResponseTimes []time.Duration
	ErrorCounts   map[string]int
	LevelCounts   map[string]int
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 500, "Total number of log calls to send")
	levelsStr := flag.String("levels", "debug,info,warn,error", "Comma-separated levels to pick from")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds")
	clearFirst := flag.Bool("clear", false, "Clear persisted logs before the run")
	flag.Parse()

	var levels []string
	for _, l := range strings.Split(*levelsStr, ",") {
		if l = strings.TrimSpace(l); l != "" {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 {
		levels = []string{"info"}
	}

	client := &http.Client{Timeout: 10 * time.Second}

	if *clearFirst {
		req, _ := http.NewRequest(http.MethodDelete, *baseURL+"/logs", nil)
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
		}
	}

	fmt.Printf("Sending %d log calls with %d workers, levels %v\n", *totalRequests, *concurrency, levels)

	stats := &TestStats{
		TotalRequests: *totalRequests,
		ResponseTimes: make([]time.Duration, 0, *totalRequests),
		ErrorCounts:   make(map[string]int),
		LevelCounts:   make(map[string]int),
	}

	jobs := make(chan int, *totalRequests)
	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	startTime := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for jobID := range jobs {
				if *delayMs > 0 {
					time.Sleep(time.Duration(*delayMs) * time.Millisecond)
				}
				stats.record(send(client, *baseURL, workerID, jobID, levels))
			}
		}(i)
	}
	wg.Wait()
	stats.TotalTime = time.Since(startTime)

	persisted := -1
	if resp, err := client.Get(*baseURL + "/logs?maxEntries=100000"); err == nil {
		var body LogsResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			persisted = body.Count
		}
		resp.Body.Close()
	}

	printResults(stats, persisted)
}

func send(client *http.Client, baseURL string, workerID, jobID int, levels []string) TestResult {
	level := levels[rand.Intn(len(levels))]
	body, err := json.Marshal(IngestRequest{
		Level:   level,
		Message: fmt.Sprintf("load test message %d", jobID),
		Data:    map[string]any{"worker": workerID, "job": jobID},
	})
	if err != nil {
		return TestResult{Level: level, Error: err}
	}

	start := time.Now()
	resp, err := client.Post(baseURL+"/logs", "application/json", bytes.NewReader(body))
	result := TestResult{Level: level, ResponseTime: time.Since(start)}
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
		return result
	}

	var ingest IngestResponse
	if err := json.NewDecoder(resp.Body).Decode(&ingest); err != nil {
		result.Error = err
		return result
	}
	result.Accepted = ingest.Accepted
	return result
}

func (s *TestStats) record(r TestResult) {
	s.Lock()
	defer s.Unlock()

	s.LevelCounts[r.Level]++
	if r.Error != nil {
		s.Failed++
		s.ErrorCounts[r.Error.Error()]++
		return
	}
	s.Succeeded++
	if r.Accepted {
		s.Accepted++
	}
	s.ResponseTimes = append(s.ResponseTimes, r.ResponseTime)
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)*p/100]
}

func printResults(stats *TestStats, persisted int) {
	sorted := append([]time.Duration(nil), stats.ResponseTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	var avg time.Duration
	if len(sorted) > 0 {
		avg = total / time.Duration(len(sorted))
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Succeeded:           %d\n", stats.Succeeded)
	fmt.Printf("Failed:              %d\n", stats.Failed)
	fmt.Printf("Passed threshold:    %d\n", stats.Accepted)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f req/s\n", float64(stats.Succeeded)/stats.TotalTime.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avg)
	fmt.Printf("P50 Response:        %v\n", percentile(sorted, 50))
	fmt.Printf("P90 Response:        %v\n", percentile(sorted, 90))
	fmt.Printf("P99 Response:        %v\n", percentile(sorted, 99))

	fmt.Println("\n----------------- LEVEL DISTRIBUTION -----------------")
	for level, count := range stats.LevelCounts {
		fmt.Printf("%-8s: %d\n", level, count)
	}

	if stats.Failed > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d\n", errMsg, count)
		}
	}

	// Persisted count never exceeds maxStorageEntries, however many calls passed the threshold
	if persisted >= 0 {
		fmt.Printf("\nPersisted entries:   %d\n", persisted)
	}
}
