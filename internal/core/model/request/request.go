package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"todoapi/internal/core/domain"
)

// Text is a string field that also accepts JSON numbers and booleans,
// stored in their canonical text form. null decodes to "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*t = Text(data)
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("cannot use %s as text", data)
		}
		*t = Text(strconv.FormatFloat(n, 'f', -1, 64))
	}

	return nil
}

type CreateTodoRequest struct {
	Title       Text `json:"title" validate:"required"`
	Description Text `json:"description"`
}

func (r CreateTodoRequest) Input() domain.TodoInput {
	return domain.TodoInput{Title: string(r.Title), Description: string(r.Description)}
}

// UpdateTodoRequest replaces both writable fields; an omitted description
// clears it.
type UpdateTodoRequest struct {
	Title       Text `json:"title"`
	Description Text `json:"description"`
}

func (r UpdateTodoRequest) Input() domain.TodoInput {
	return domain.TodoInput{Title: string(r.Title), Description: string(r.Description)}
}
