/*
Package relaysdk is the client side of the acceptance-criteria relay.

# Overview

The relay hands out short-lived bearer tokens for a shared client secret,
forwards conversion jobs to a workflow engine and hands the engine's
asynchronous answer back to the client. This package wraps all of that:

  - Client: raw calls to the relay endpoints
  - Session: token acquisition with caching and secret prompting
  - Converter: the full submission sequence

A typical program needs only a Converter:

	client := relaysdk.NewClient("https://relay.example.com")
	cache := relaysdk.NewFileTokenCache(relaysdk.DefaultCachePath())
	session := relaysdk.NewSession(client, cache, relaysdk.NewTerminalPrompter())
	conv := relaysdk.NewConverter(client, session)

	out, err := conv.Submit(ctx, relaysdk.Job{
		Criteria:     "Given ... when ... then ...",
		Agent:        "gemini",
		OutputFormat: "gherkin",
	})
	if errors.Is(err, relaysdk.ErrSuperseded) {
		return nil // a newer submission took over
	}
	fmt.Println(out.Text())

# Delivery

Submit opens the push subscription (GET /api/events) before the job is sent,
so a fast callback is never missed. The stream and a one-second poll of
GET /api/result then race; the first to produce a result wins and the other
is cancelled. When nothing arrives within AwaitTimeout the Outcome has
Status StatusTimedOut.

# Tokens

Tokens are cached for CacheLifetime, which is shorter than their server-side
lifetime. A 401 from the conversion endpoint clears the cache, prompts once
more and retries once.

# Errors

Failed requests return *APIError. errors.Is(err, ErrUnauthorized) holds for
any 401.
*/
package relaysdk
