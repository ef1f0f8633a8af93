package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparsable wraps every parse failure so callers can errors.Is it.
var ErrUnparsable = errors.New("unparsable model response")

var fenceRe = regexp.MustCompile("(?s)```([A-Za-z0-9]*)\\s*(.*?)\\s*```")

// payloadCandidates collects the substrings of raw model text that may
// hold the JSON object, in preference order: fenced blocks tagged json
// or untagged, then the span from the first '{' to the last '}'. Fences
// tagged with another language (a ```python snippet in the prose) are
// never candidates, so a valid object outside them still parses.
func payloadCandidates(raw string) []string {
	var cands []string
	for _, m := range fenceRe.FindAllStringSubmatch(raw, -1) {
		switch strings.ToLower(m[1]) {
		case "json", "":
			cands = append(cands, m[2])
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		cands = append(cands, raw[start:end+1])
	}
	return cands
}

// Parse turns raw model text into a ParsedResponse. Candidates are
// tried in order and the first that decodes to a usable object wins, so
// a broken fence does not mask a good object elsewhere in the text.
// Empty input and payloads that decode but match none of the expected
// fields both fail; the loop answers failures with a corrective
// message, never a crash.
//
// Parsing is idempotent: re-serializing a ParsedResponse and parsing it
// again yields the same value.
func Parse(raw string) (*ParsedResponse, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUnparsable)
	}
	cands := payloadCandidates(raw)
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnparsable)
	}
	var firstErr error
	for _, payload := range cands {
		parsed, err := decodeResponse(payload)
		if err == nil {
			return parsed, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func decodeResponse(payload string) (*ParsedResponse, error) {
	var parsed ParsedResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	if parsed.Thought == "" && parsed.Command == nil && parsed.Answer == "" {
		return nil, fmt.Errorf("%w: object has none of thought, command, answer", ErrUnparsable)
	}
	if parsed.Command != nil && parsed.Command.Name == "" {
		return nil, fmt.Errorf("%w: command is missing a name", ErrUnparsable)
	}
	return &parsed, nil
}
