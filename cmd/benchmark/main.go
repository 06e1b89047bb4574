// Benchmark tool for testing Kavach against labeled SMS spam data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/sms_spam.csv -url http://localhost:8080
//
// This tool:
//   1. Reads labeled SMS data (spam/ham labels, e.g. the UCI SMS Spam Collection)
//   2. Sends each message to Kavach for scoring
//   3. Compares Kavach's verdict (isScam) with the actual labels
//   4. Calculates precision, recall, F1-score, and confusion matrix
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LabeledMessage represents a row from the dataset.
type LabeledMessage struct {
	Sender  string
	Content string
	IsSpam  bool
}

// ScanRequest is the Kavach API request format.
type ScanRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ScanResponse is the Kavach API response format.
type ScanResponse struct {
	ScanID    string   `json:"scanId"`
	Score     int      `json:"score"`
	IsScam    bool     `json:"isScam"`
	RiskLevel string   `json:"riskLevel"`
	Reasons   []string `json:"reasons"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TruePositives  int64 // Spam detected as scam
	FalsePositives int64 // Ham detected as scam
	TrueNegatives  int64 // Ham detected as clean
	FalseNegatives int64 // Spam detected as clean (missed!)

	TotalProcessed int64
	TotalSpam      int64
	TotalHam       int64
	TotalErrors    int64

	ProcessingTimeMs int64
}

func main() {
	// Parse flags
	csvPath := flag.String("csv", "", "Path to labeled SMS CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Kavach base URL")
	tenantID := flag.String("tenant", "benchmark-test", "Tenant ID for requests")
	limit := flag.Int("limit", 10000, "Maximum messages to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	spamOnly := flag.Bool("spam-only", false, "Only test spam messages")
	sampleRate := flag.Float64("sample", 1.0, "Sample rate for ham messages (0.0-1.0)")
	verbose := flag.Bool("verbose", false, "Print each message result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/sms_spam.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║            KAVACH BENCHMARK - SMS Scam Detection              ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("Kavach URL:  %s\n", *baseURL)
	fmt.Printf("Tenant ID:   %s\n", *tenantID)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Printf("Spam Only:   %v\n", *spamOnly)
	fmt.Printf("Sample Rate: %.2f\n", *sampleRate)
	fmt.Println()

	// Check Kavach is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Kavach not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Kavach is running:")
		fmt.Println("  cd kavach && go run cmd/kavach/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Kavach is healthy")

	// Read labeled data
	fmt.Printf("\nReading SMS data from %s...\n", *csvPath)
	messages, err := readLabeledCSV(*csvPath, *limit, *spamOnly, *sampleRate)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded %d messages\n", len(messages))

	// Count spam vs ham
	spamCount := 0
	for _, m := range messages {
		if m.IsSpam {
			spamCount++
		}
	}
	fmt.Printf("  - Spam: %d (%.2f%%)\n", spamCount, 100*float64(spamCount)/float64(len(messages)))
	fmt.Printf("  - Ham:  %d (%.2f%%)\n", len(messages)-spamCount, 100*float64(len(messages)-spamCount)/float64(len(messages)))

	// Run benchmark
	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(messages, *baseURL, *tenantID, *workers, *verbose)
	duration := time.Since(startTime)

	// Print results
	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// readLabeledCSV reads a labeled SMS dataset. Expected columns: a label
// column ("label" or "v1") holding spam/ham, a text column ("text",
// "message" or "v2"), and optionally a "sender" column.
func readLabeledCSV(path string, limit int, spamOnly bool, sampleRate float64) ([]LabeledMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Map column indices
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	labelCol, ok := colIndex["label"]
	if !ok {
		labelCol, ok = colIndex["v1"]
	}
	if !ok {
		return nil, fmt.Errorf("no label column found (expected 'label' or 'v1')")
	}

	textCol, ok := colIndex["text"]
	if !ok {
		textCol, ok = colIndex["message"]
	}
	if !ok {
		textCol, ok = colIndex["v2"]
	}
	if !ok {
		return nil, fmt.Errorf("no text column found (expected 'text', 'message' or 'v2')")
	}

	senderCol, hasSender := colIndex["sender"]

	var messages []LabeledMessage
	sampleCounter := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}
		if labelCol >= len(record) || textCol >= len(record) {
			continue
		}

		label := strings.ToLower(strings.TrimSpace(record[labelCol]))
		isSpam := label == "spam" || label == "scam" || label == "1"

		// Apply filters
		if spamOnly && !isSpam {
			continue
		}

		// Sample ham messages
		if !isSpam && sampleRate < 1.0 {
			sampleCounter++
			if float64(sampleCounter%100)/100.0 >= sampleRate {
				continue
			}
		}

		msg := LabeledMessage{
			Content: record[textCol],
			IsSpam:  isSpam,
		}
		if hasSender && senderCol < len(record) {
			msg.Sender = record[senderCol]
		}

		messages = append(messages, msg)

		if limit > 0 && len(messages) >= limit {
			break
		}
	}

	return messages, nil
}

func runBenchmark(messages []LabeledMessage, baseURL, tenantID string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	// Create work channel
	work := make(chan LabeledMessage, 100)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for msg := range work {
				start := time.Now()
				result, err := scanMessage(client, baseURL, tenantID, msg)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %v\n", err)
					}
					continue
				}

				// Track actual labels
				if msg.IsSpam {
					atomic.AddInt64(&metrics.TotalSpam, 1)
				} else {
					atomic.AddInt64(&metrics.TotalHam, 1)
				}

				// Calculate confusion matrix
				predicted := result.IsScam
				actual := msg.IsSpam

				if predicted && actual {
					atomic.AddInt64(&metrics.TruePositives, 1)
				} else if predicted && !actual {
					atomic.AddInt64(&metrics.FalsePositives, 1)
				} else if !predicted && !actual {
					atomic.AddInt64(&metrics.TrueNegatives, 1)
				} else { // !predicted && actual
					atomic.AddInt64(&metrics.FalseNegatives, 1)
				}

				if verbose {
					status := "✓"
					if predicted != actual {
						status = "✗"
					}
					preview := msg.Content
					if len(preview) > 40 {
						preview = preview[:40]
					}
					fmt.Printf("%s %-40s | Spam: %-5v | Kavach: %-5v (score %3d, %s)\n",
						status,
						preview,
						msg.IsSpam,
						result.IsScam,
						result.Score,
						result.RiskLevel,
					)
				}
			}
		}()
	}

	// Send work
	for _, msg := range messages {
		work <- msg
	}
	close(work)

	// Wait for completion
	wg.Wait()

	return metrics
}

func scanMessage(client *http.Client, baseURL, tenantID string, msg LabeledMessage) (*ScanResponse, error) {
	req := ScanRequest{
		Sender:  msg.Sender,
		Content: msg.Content,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/scan", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result ScanResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 DATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Total Spam:       %d\n", m.TotalSpam)
	fmt.Printf("   Total Ham:        %d\n", m.TotalHam)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	fmt.Printf("\n📈 CONFUSION MATRIX\n")
	fmt.Println("                        Predicted")
	fmt.Println("                    SCAM        CLEAN")
	fmt.Println("              ┌──────────┬──────────┐")
	fmt.Printf("   Actual  S  │ %8d │ %8d │  (TP, FN)\n", m.TruePositives, m.FalseNegatives)
	fmt.Println("              ├──────────┼──────────┤")
	fmt.Printf("           H  │ %8d │ %8d │  (FP, TN)\n", m.FalsePositives, m.TrueNegatives)
	fmt.Println("              └──────────┴──────────┘")

	// Calculate metrics
	precision := float64(0)
	if m.TruePositives+m.FalsePositives > 0 {
		precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}

	recall := float64(0)
	if m.TruePositives+m.FalseNegatives > 0 {
		recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}

	f1 := float64(0)
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	accuracy := float64(0)
	total := m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
	if total > 0 {
		accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}

	fmt.Printf("\n🎯 DETECTION METRICS\n")
	fmt.Printf("   Precision:  %.4f  (of scam verdicts, how many were actual spam)\n", precision)
	fmt.Printf("   Recall:     %.4f  (of spam, how many did we catch)\n", recall)
	fmt.Printf("   F1-Score:   %.4f  (harmonic mean of precision & recall)\n", f1)
	fmt.Printf("   Accuracy:   %.4f  (overall correct predictions)\n", accuracy)

	// Detection rate analysis
	fmt.Printf("\n🔍 DETECTION ANALYSIS\n")
	if m.TotalSpam > 0 {
		detectionRate := float64(m.TruePositives) / float64(m.TotalSpam) * 100
		missRate := float64(m.FalseNegatives) / float64(m.TotalSpam) * 100
		fmt.Printf("   Spam Detected:     %d / %d (%.2f%%)\n", m.TruePositives, m.TotalSpam, detectionRate)
		fmt.Printf("   Spam Missed:       %d / %d (%.2f%%) ⚠️\n", m.FalseNegatives, m.TotalSpam, missRate)
	}
	if m.TotalHam > 0 {
		falseAlarmRate := float64(m.FalsePositives) / float64(m.TotalHam) * 100
		fmt.Printf("   False Alarms:      %d / %d (%.2f%%)\n", m.FalsePositives, m.TotalHam, falseAlarmRate)
	}

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		mps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f msg/sec\n", mps)
	}

	// Interpretation
	fmt.Printf("\n💡 INTERPRETATION\n")
	if recall >= 0.9 {
		fmt.Println("   ✅ Excellent recall - catching most spam")
	} else if recall >= 0.7 {
		fmt.Println("   ⚠️  Good recall - but missing some spam")
	} else if recall >= 0.5 {
		fmt.Println("   ⚠️  Moderate recall - significant spam being missed")
	} else {
		fmt.Println("   ❌ Poor recall - most spam is being missed!")
	}

	if precision >= 0.5 {
		fmt.Println("   ✅ Good precision - scam verdicts are meaningful")
	} else if precision >= 0.2 {
		fmt.Println("   ⚠️  Low precision - many false alarms")
	} else {
		fmt.Println("   ❌ Very low precision - mostly false alarms")
	}

	fmt.Println()
}
