// Package request defines the Descriptor, the validated and passive
// description of a single HTTP call.
//
// A Descriptor is built either directly in Go and checked with Validate, or
// from an untyped object with FromMap:
//
//	d, err := request.FromMap(map[string]interface{}{
//	    "method":             "POST",
//	    "url":                "https://127.0.0.1:8443/echo",
//	    "headers":            []interface{}{"Content-Type: application/json"},
//	    "body":               `{"x":42}`,
//	    "timeout_ms":         5000,
//	    "rejectUnauthorized": true,
//	    "ca":                 "/etc/ssl/internal-ca.pem",
//	})
//
// Validation never touches the network. The method is kept verbatim, header
// lines are kept as raw strings in their original order, and both timeouts
// fall back to DefaultTimeout.
//
// TLS verification is OFF unless rejectUnauthorized (VerifyPeer) is true.
package request
