package mcp

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/easypass/internal/errors"
)

// decode converts the tool arguments into T. A wrongly typed argument is
// reported by its JSON name.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return out, errors.NewInvalidRequest(fmt.Sprintf("arguments: %v", err))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return out, errors.NewInvalidRequest(fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String()))
		}
		return out, errors.NewInvalidRequest(fmt.Sprintf("arguments: %v", err))
	}
	return out, nil
}
