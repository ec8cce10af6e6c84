// Package nodes holds helpers shared by the built-in node types.
package nodes

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dukex/flowdeck/pkg/protocol"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode copies a raw node config into a typed config struct.
func Decode(nodeID, nodeType string, config map[string]any, target any) error {
	if config == nil {
		config = map[string]any{}
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return &protocol.ConfigError{NodeID: nodeID, NodeType: nodeType, Message: err.Error()}
	}

	err = json.Unmarshal(raw, target)
	if err != nil {
		return &protocol.ConfigError{NodeID: nodeID, NodeType: nodeType, Message: err.Error()}
	}

	return nil
}

// Validate checks a typed config against its validate tags.
func Validate(nodeID, nodeType string, config any) error {
	err := validate.Struct(config)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &protocol.ConfigError{NodeID: nodeID, NodeType: nodeType, Message: err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))

	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("missing required field '%s'", fieldErr.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("field '%s' must be one of [%s]", fieldErr.Field(), fieldErr.Param()))
		default:
			messages = append(messages, fmt.Sprintf("field '%s' failed '%s' check", fieldErr.Field(), fieldErr.Tag()))
		}
	}

	return &protocol.ConfigError{NodeID: nodeID, NodeType: nodeType, Message: strings.Join(messages, "; ")}
}
