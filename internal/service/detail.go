package service

import (
	"encoding/json"
	"errors"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return errors.New("empty expression")
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// extractDetail evaluates expr against a JSON error body and returns a non-empty string result.
func extractDetail(ev JMESPathEvaluator, expr string, body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", false
	}
	res, err := ev.Evaluate(expr, data)
	if err != nil {
		return "", false
	}
	s, ok := res.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
