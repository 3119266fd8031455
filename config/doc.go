// Package config loads request files for programmatic use.
//
// A request file names request descriptors and shares variables between
// them. YAML is assumed unless the file name ends in .json:
//
//	variables:
//	  host: api.example.com
//	requests:
//	  health:
//	    method: GET
//	    url: https://{{host}}/health
//	    headers: ["Accept: application/json"]
//	    timeout_ms: 2000
//	  upload:
//	    method: PUT
//	    url: https://{{host}}/files/{{name}}
//	    body: "{{content}}"
//	    rejectUnauthorized: true
//	    ca: certs/ca.pem
//
// Basic Usage:
//
//	f, err := config.LoadFile("requests.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d, err := f.Request("upload", map[string]string{"name": "a.txt", "content": "hi"})
//
// Variable Substitution:
//
// {{name}} placeholders are replaced in method, url, header lines, body,
// passphrase and TLS paths. Variables passed by the caller override the
// file's. A placeholder with no value is reported as a ValidationError.
// Relative TLS paths resolve against the directory of the file.
package config
