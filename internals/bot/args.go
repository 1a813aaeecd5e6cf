package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError is a command argument that is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

const (
	reasonMissing   = "missing"
	reasonNotNumber = "not a number"
)

// DecodeText returns the trimmed free-form payload of a command.
func DecodeText(payload string) (string, error) {
	text := strings.TrimSpace(payload)
	if text == "" {
		return "", &ValidationError{Field: "message", Reason: reasonMissing}
	}
	return text, nil
}

// DecodeID parses the first argument as a user id.
func DecodeID(args []string) (int64, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return 0, &ValidationError{Field: "user_id", Reason: reasonMissing}
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "user_id", Reason: reasonNotNumber}
	}
	return id, nil
}

// CommandText strips the leading "/command" (and any @botname suffix) from a
// message, the same way the payload of a command is derived.
func CommandText(message string) string {
	message = strings.TrimSpace(message)
	if !strings.HasPrefix(message, "/") {
		return message
	}
	i := strings.IndexAny(message, " \n\t")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(message[i:])
}
