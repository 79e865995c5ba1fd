package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const maxDetailLen = 512

// Result is a successful peer answer.
// Latency is advisory (liveness indicator) and never part of Value.
type Result struct {
	// Value is the decoded "value" field, the whole JSON document, raw text for
	// a non-JSON body, or nil for an empty body
	Value any
	// Body is the JSON document as received, nil when the body was not JSON
	Body json.RawMessage

	Status    int
	Latency   time.Duration
	RequestID string
}

// Image is a binary peer answer
type Image struct {
	Data        []byte
	ContentType string
	Status      int
	Latency     time.Duration
}

// decodeResult turns a raw answer into a Result or a PEER_ERROR.
// unwrapValue picks the "value" field out of an object body.
func decodeResult(raw *rawResponse, unwrapValue bool) (*Result, error) {
	if raw.status < 200 || raw.status > 299 {
		detail, peerCode := errorDetail(raw.body)
		return nil, peerError(raw, detail, peerCode)
	}

	res := &Result{Status: raw.status, Latency: raw.latency, RequestID: raw.requestID}

	body := bytes.TrimSpace(raw.body)
	if len(body) == 0 {
		return res, nil
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil || dec.More() {
		res.Value = string(raw.body)
		return res, nil
	}
	res.Body = json.RawMessage(body)

	obj, ok := doc.(map[string]any)
	if !ok {
		res.Value = doc
		return res, nil
	}

	// a 2xx body can still carry a ledger-level failure
	if code, _ := obj["errorCode"].(string); code != "" {
		return nil, peerError(raw, describe(code, obj), code)
	}

	if v, ok := obj["value"]; ok && unwrapValue {
		res.Value = v
		return res, nil
	}
	res.Value = obj
	return res, nil
}

// errorDetail picks a human-readable message out of an error body
func errorDetail(body []byte) (detail, peerCode string) {
	text := strings.TrimSpace(string(body))

	var quoted string
	if err := json.Unmarshal(body, &quoted); err == nil && quoted != "" {
		return truncate(quoted), ""
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		peerCode, _ = obj["errorCode"].(string)
		for _, field := range []string{"errorMessage", "error", "message"} {
			if msg, ok := obj[field].(string); ok && msg != "" {
				return truncate(msg), peerCode
			}
		}
	}
	if text == "" {
		text = "empty response"
	}
	return truncate(text), peerCode
}

func describe(code string, obj map[string]any) string {
	if msg, ok := obj["errorMessage"].(string); ok && msg != "" {
		return code + ": " + truncate(msg)
	}
	if v, ok := obj["value"]; ok {
		if b, err := json.Marshal(v); err == nil {
			return code + ": " + truncate(string(b))
		}
	}
	return code
}

func truncate(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	return s[:maxDetailLen] + "..."
}
