package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// decodeResult unwraps a {"ok": ...} / {"err": ...} envelope. Both the lowercase
// Motoko convention and the capitalised ICRC convention are accepted.
func decodeResult(method string, body []byte, out any) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, method, err)
	}

	if raw, ok := pick(envelope, "err", "Err"); ok {
		return rejection(method, raw)
	}

	raw, ok := pick(envelope, "ok", "Ok")
	if !ok {
		return fmt.Errorf("%w: %s: no ok or err field", ErrMalformedResponse, method)
	}
	if out == nil {
		return nil
	}
	if isNull(raw) {
		return fmt.Errorf("%w: %s: empty ok value", ErrMalformedResponse, method)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, method, err)
	}
	return nil
}

func pick(envelope map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := envelope[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// rejection turns an err payload into a RejectedError. Payloads are either a plain
// message or a variant such as {"InsufficientFunds": {"balance": 0}}.
func rejection(method string, raw json.RawMessage) error {
	rejected := &RejectedError{Method: method, Raw: raw}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		rejected.Message = msg
		return rejected
	}

	var variant map[string]json.RawMessage
	if err := json.Unmarshal(raw, &variant); err == nil && len(variant) > 0 {
		tags := make([]string, 0, len(variant))
		for tag := range variant {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		rejected.Code = tags[0]
		if payload := variant[tags[0]]; !isNull(payload) {
			var detail string
			if err := json.Unmarshal(payload, &detail); err == nil {
				rejected.Message = detail
			} else {
				rejected.Message = string(payload)
			}
		}
		return rejected
	}

	rejected.Message = strings.TrimSpace(string(raw))
	return rejected
}
