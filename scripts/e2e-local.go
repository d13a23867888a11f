//go:build ignore

// e2e-local.go - End-to-end check of a running FaceAuth API server
//
// The server may use any ledger and index driver. The script needs three
// images: two captures of the same person and one of somebody else.
//
// Test Flow:
// 1. Wait for /health and /ready
// 2. Register a fresh username with the first capture
// 3. Verify with the second capture
// 4. Verify with a wrong password and with the other person's face
// 5. Register the same username again
// 6. Verify an unknown username
// 7. Read /stats and trigger /admin/reconcile
//
// Usage:
//   go run scripts/e2e-local.go -url http://localhost:8081 \
//     -image alice-1.jpg -recapture alice-2.jpg -other bob.jpg

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// Colors for output
const (
	colorRed   = "\033[0;31m"
	colorGreen = "\033[0;32m"
	colorBlue  = "\033[0;34m"
	colorCyan  = "\033[0;36m"
	colorReset = "\033[0m"
)

var (
	apiURL        = flag.String("url", "http://localhost:8081", "API server base URL")
	imagePath     = flag.String("image", "", "First capture of the test person")
	recapturePath = flag.String("recapture", "", "Second capture of the same person")
	otherPath     = flag.String("other", "", "Capture of a different person")
	verbose       = flag.Bool("verbose", false, "Print response bodies")
)

type apiError struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

var client = &http.Client{Timeout: 3 * time.Minute}

func main() {
	flag.Parse()

	if *imagePath == "" || *recapturePath == "" || *otherPath == "" {
		printError("-image, -recapture and -other are required")
		os.Exit(1)
	}

	if err := run(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	printHeader("All checks passed")
}

func run() error {
	image, err := readImage(*imagePath)
	if err != nil {
		return err
	}
	recapture, err := readImage(*recapturePath)
	if err != nil {
		return err
	}
	other, err := readImage(*otherPath)
	if err != nil {
		return err
	}

	printHeader("Waiting for API server")
	if err := waitForEndpoint(*apiURL+"/health", 30, 2*time.Second); err != nil {
		return err
	}
	if err := waitForEndpoint(*apiURL+"/ready", 30, 2*time.Second); err != nil {
		return err
	}
	printSuccess("API server is ready")

	username := "e2e-" + uuid.NewString()[:8]
	const password = "e2e-password"

	printHeader("Registration")
	printStep("Registering %s", username)
	if err := expect("/register", username, password, image, http.StatusCreated, ""); err != nil {
		return err
	}
	printStep("Registering %s again", username)
	if err := expect("/register", username, password, image, http.StatusConflict, "DuplicateIdentity"); err != nil {
		return err
	}

	printHeader("Verification")
	printStep("Verifying with a recapture")
	if err := expect("/verify", username, password, recapture, http.StatusOK, ""); err != nil {
		return err
	}
	printStep("Verifying with a wrong password")
	if err := expect("/verify", username, "wrong", recapture, http.StatusUnauthorized, "AuthenticationFailed"); err != nil {
		return err
	}
	printStep("Verifying with another face")
	if err := expect("/verify", username, password, other, http.StatusUnauthorized, "AuthenticationFailed"); err != nil {
		return err
	}
	printStep("Verifying an unknown user")
	if err := expect("/verify", username+"-unknown", password, image, http.StatusNotFound, "NotFound"); err != nil {
		return err
	}

	printHeader("Operations")
	for _, call := range []struct{ method, path string }{
		{http.MethodGet, "/stats"},
		{http.MethodPost, "/admin/reconcile"},
	} {
		status, body, err := do(call.method, call.path, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("%s %s returned %d: %s", call.method, call.path, status, body)
		}
		printSuccess("%s %s", call.method, call.path)
		printInfo("%s", body)
	}
	return nil
}

func expect(path, username, password string, image []byte, wantStatus int, wantReason string) error {
	body, err := json.Marshal(map[string]string{
		"username":   username,
		"password":   password,
		"face_image": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return err
	}

	status, out, err := do(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if status != wantStatus {
		return fmt.Errorf("POST %s: expected status %d, got %d: %s", path, wantStatus, status, out)
	}
	if wantReason != "" {
		var apiErr apiError
		if err := json.Unmarshal(out, &apiErr); err != nil {
			return fmt.Errorf("POST %s: invalid error body: %w", path, err)
		}
		if apiErr.Reason != wantReason {
			return fmt.Errorf("POST %s: expected reason %s, got %s", path, wantReason, apiErr.Reason)
		}
	}
	printSuccess("POST %s -> %d", path, status)
	if *verbose {
		printInfo("%s", out)
	}
	return nil
}

func do(method, path string, body []byte) (int, []byte, error) {
	req, err := http.NewRequest(method, *apiURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, err
}

func waitForEndpoint(url string, maxAttempts int, interval time.Duration) error {
	for i := 0; i < maxAttempts; i++ {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("endpoint %s not ready after %d attempts", url, maxAttempts)
}

func readImage(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return b, nil
}

// =============================================================================
// Output Helpers
// =============================================================================

func printHeader(msg string) {
	fmt.Printf("\n%s══════════════════════════════════════════════════════════════════════%s\n", colorBlue, colorReset)
	fmt.Printf("%s  %s%s\n", colorBlue, msg, colorReset)
	fmt.Printf("%s══════════════════════════════════════════════════════════════════════%s\n", colorBlue, colorReset)
}

func printStep(format string, args ...interface{}) {
	fmt.Printf("%s>>> %s%s\n", colorCyan, fmt.Sprintf(format, args...), colorReset)
}

func printSuccess(format string, args ...interface{}) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
}

func printError(format string, args ...interface{}) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	fmt.Printf("    %s\n", fmt.Sprintf(format, args...))
}
