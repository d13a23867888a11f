//go:build ignore

// register-user.go - Register or verify a single identity against a running API server
//
// Usage:
//   go run scripts/register-user.go -url http://localhost:8081 \
//     -username alice -password secret -image alice.jpg
//
//   go run scripts/register-user.go -url http://localhost:8081 \
//     -username alice -password secret -image alice-2.jpg -verify

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
)

var (
	apiURL    = flag.String("url", "http://localhost:8081", "API server base URL")
	username  = flag.String("username", "", "Username to register or verify")
	password  = flag.String("password", "", "Password")
	imagePath = flag.String("image", "", "Path to a face image (jpeg or png)")
	verify    = flag.Bool("verify", false, "Verify instead of register")
)

func main() {
	flag.Parse()

	if *username == "" || *password == "" || *imagePath == "" {
		fmt.Println("Error: -username, -password and -image are required")
		flag.Usage()
		os.Exit(1)
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Printf("Error: failed to read image: %v\n", err)
		os.Exit(1)
	}

	body, err := json.Marshal(map[string]string{
		"username":   *username,
		"password":   *password,
		"face_image": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	path := "/register"
	if *verify {
		path = "/verify"
	}

	client := &http.Client{Timeout: 3 * time.Minute}
	resp, err := client.Post(*apiURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error: request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	var pretty bytes.Buffer
	if json.Indent(&pretty, out, "", "  ") == nil {
		out = pretty.Bytes()
	}

	fmt.Printf("%s %s -> %d\n%s\n", http.MethodPost, path, resp.StatusCode, out)
	if resp.StatusCode >= 300 {
		os.Exit(1)
	}
}
