// Package bridge sends single prompts to Gemini models and reports the
// outcome as an opaque request/response pair.
//
// Invoke never returns a Go error: validation failures, backend failures and
// empty generations all come back as a Response with status "error".
package bridge
