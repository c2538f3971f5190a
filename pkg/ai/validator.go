package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Validator turns raw provider text into a payload that matches an
// operation's declared shape. It never repairs or coerces data.
type Validator struct {
	shapes map[OpType]Node
}

// NewValidator builds a Validator over the declared operation shapes.
func NewValidator() *Validator {
	return &Validator{shapes: shapes}
}

// Covers reports the operations in ops that have no declared shape.
func (v *Validator) Covers(ops []OpType) []OpType {
	var missing []OpType
	for _, op := range ops {
		if _, ok := v.shapes[op]; !ok {
			missing = append(missing, op)
		}
	}
	return missing
}

// Parse decodes raw and checks it against op's shape. Failures are
// *ParseError or *SchemaError.
func (v *Validator) Parse(op OpType, raw string) (any, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, &ParseError{Reason: "empty response"}
	}
	if text[0] != '{' && text[0] != '[' {
		return nil, &ParseError{Reason: "response does not start with a JSON object or array"}
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Reason: "unexpected data after JSON document"}
	}

	if err := v.Check(op, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Check validates an already decoded payload against op's shape.
func (v *Validator) Check(op OpType, payload any) error {
	shape, ok := v.shapes[op]
	if !ok {
		return &SchemaError{Op: op, Reason: "no shape declared for operation"}
	}
	if failure := shape.check(payload, ""); failure != nil {
		return &SchemaError{Op: op, Field: failure.path, Reason: failure.reason}
	}
	return nil
}

// CheckRequest validates what a shape cannot express alone: the number of
// questions must match the count the request asked for. It runs after Check.
func (v *Validator) CheckRequest(op OpType, params Params, payload any) error {
	switch op {
	case OpGenerateQuestions:
		items, _ := payload.([]any)
		return checkItemCount(op, "", len(items), params.Int("count"))
	case OpExamGeneration:
		want := 0
		for _, count := range params.Counts("distribution") {
			want += count
		}
		if want == 0 {
			return nil
		}
		exam, _ := payload.(map[string]any)
		items, _ := exam["questions"].([]any)
		return checkItemCount(op, "questions", len(items), want)
	}
	return nil
}

func checkItemCount(op OpType, path string, got, want int) error {
	if want <= 0 || got == want {
		return nil
	}
	index := got
	if got > want {
		index = want
	}
	return &SchemaError{
		Op:     op,
		Field:  fmt.Sprintf("%s[%d]", path, index),
		Reason: fmt.Sprintf("expected %d questions, got %d", want, got),
	}
}

// stripCodeFence trims whitespace and removes one enclosing ``` fence,
// including an optional language tag on the opening line.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		tag := strings.TrimSpace(body[:newline])
		if tag == "" || !strings.ContainsAny(tag, "{[") {
			body = body[newline+1:]
		}
	} else {
		body = strings.TrimLeft(body, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
