// Package main provides a CI-friendly HTTP smoke test for the enroll
// registration endpoint.
//
// It validates:
//   - successful registration returns the {success, data} envelope with a token
//   - repeating the same registration is rejected as an existing user
//   - a request missing fields is rejected with the canonical message
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const maxReadBytes = 1 << 20 // 1MiB

type envelope struct {
	Success bool    `json:"success"`
	Data    *string `json:"data"`
	Message string  `json:"message"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "Server base URL")
		email    = flag.String("email", "", "Email to register (default: generated)")
		password = flag.String("password", "Sm0ke!test-pass", "Password to register")
		fullName = flag.String("name", "Smoke Test", "Full name to register")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-request timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}

	addr := *email
	if addr == "" {
		addr = fmt.Sprintf("smoke-%d@example.com", time.Now().UnixNano())
	}

	root := context.Background()
	client := &http.Client{}

	first := mustSignup(root, client, *baseURL, addr, *password, *fullName, *timeout)
	if first.status != http.StatusOK || !first.env.Success || first.env.Data == nil || *first.env.Data == "" {
		fatalf("first signup: status=%d env=%+v; want 200 with token", first.status, first.env)
	}
	if *verbose {
		fmt.Printf("registered: email=%s token_len=%d\n", addr, len(*first.env.Data))
	}

	repeat := mustSignup(root, client, *baseURL, addr, *password, *fullName, *timeout)
	if repeat.status != http.StatusUnauthorized || repeat.env.Success {
		fatalf("repeat signup: status=%d env=%+v; want 401 rejection", repeat.status, repeat.env)
	}
	if !strings.Contains(repeat.env.Message, "already exists") {
		fatalf("repeat signup: message=%q; want existing-user rejection", repeat.env.Message)
	}

	missing := mustSignup(root, client, *baseURL, addr, "", *fullName, *timeout)
	if missing.status != http.StatusBadRequest || missing.env.Success {
		fatalf("missing password: status=%d env=%+v; want 400 rejection", missing.status, missing.env)
	}

	fmt.Printf("OK: email=%s token_len=%d\n", addr, len(*first.env.Data))
}

type signupResult struct {
	status int
	env    envelope
}

func mustSignup(parent context.Context, client *http.Client, baseURL, email, password, fullName string, timeout time.Duration) signupResult {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
	if err != nil {
		fatalf("marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/auth/signup", bytes.NewReader(body))
	if err != nil {
		fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		fatalf("signup request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	dec := json.NewDecoder(http.MaxBytesReader(nil, resp.Body, maxReadBytes))
	if err := dec.Decode(&env); err != nil {
		fatalf("decode response (status %d): %v", resp.StatusCode, err)
	}

	return signupResult{status: resp.StatusCode, env: env}
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
