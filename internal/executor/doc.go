/*
Package executor performs a single HTTP exchange described by a
request.Descriptor and reports a typed Result.

# Two-step delivery

Execute blocks until the exchange completes and returns the outcome:

  - Success: BodyLength and the raw response header lines (status lines and
    the blank terminator line included, for every hop of a redirect chain)
  - TimedOut: the connect or total timeout elapsed
  - Failed: any other transport failure, with the transport's message

The body is not part of the Result. It stays in the Executor until the
caller hands over a buffer of at least BodyLength bytes:

	e := executor.New()
	res, err := e.Execute(desc)
	if err != nil {
		return err // validation or usage error, no network activity happened
	}
	if res.Kind == executor.Success {
		buf := make([]byte, res.BodyLength)
		n, err := e.Drain(buf)
		...
	}

Every Execute starts from empty buffers, so a body that was never drained
cannot leak into the next call. On TimedOut and Failed both buffers are
emptied before Execute returns.

# Transport

Each call builds its own HTTP/1.x transport with keep-alives disabled and
closes it before returning. Redirects are followed up to MaxRedirects hops;
beyond that the last redirect response is returned as a Success. There are
no retries.

# TLS

Peer verification is disabled unless the descriptor asks for it. This
insecure default is intentional; callers reaching real services must set
VerifyPeer. A CA bundle replaces the system roots whether or not verification
is on. Client identities can be PEM (separate or embedded key, optionally
encrypted) or PKCS#12 bundles. Unreadable TLS material yields a Failed result.

# Thread Safety

An Executor handles one call at a time. Concurrent calls on the same instance
return a *UsageError wrapping ErrBusy.
*/
package executor
