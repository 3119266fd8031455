// Package http is the public API for performing blocking HTTP exchanges.
//
// It offers two levels:
//   - Executor: one exchange per call described by a Descriptor, with the
//     raw header lines of every hop and a two-step body hand-over
//   - Request: a builder over URL parts and a case-insensitive header map
//     whose End parses the status and headers and returns the body
//
// Executor Usage:
//
//	e := http.NewExecutor()
//	res, err := e.Run(map[string]interface{}{
//	    "method":     "GET",
//	    "url":        "https://api.example.com/health",
//	    "headers":    []string{"Accept: application/json"},
//	    "timeout_ms": 5000,
//	})
//	if err != nil {
//	    log.Fatal(err) // invalid descriptor, nothing was sent
//	}
//	if res.Kind == http.Success {
//	    body := make([]byte, res.BodyLength)
//	    n, _ := e.Drain(body)
//	    fmt.Printf("%q\n%s\n", res.Headers, body[:n])
//	}
//
// Request Usage:
//
//	req := http.NewRequest(http.Options{
//	    Method:   "post",
//	    Protocol: "https",
//	    Host:     "auth.example.com",
//	    Path:     "/oauth/token",
//	})
//	req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
//	resp, err := req.End([]byte("grant_type=client_credentials"))
//	if errors.Is(err, http.ErrTimeout) {
//	    ...
//	}
//	fmt.Println(resp.StatusCode, resp.Headers.Get("content-type"))
//
// TLS:
//
// The Executor does not verify server certificates unless the descriptor
// sets rejectUnauthorized (VerifyPeer). Request verifies by default.
//
// Thread Safety:
//
// An Executor runs one exchange at a time; overlapping calls fail with
// ErrBusy. Use one Executor per goroutine. A Request must not be shared.
package http
