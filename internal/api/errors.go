package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
)

// maxPlainError is how much of a non-JSON error body is shown.
const maxPlainError = 200

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Title   string
	Errors  map[string][]string
	Raw     string // body text when it was not JSON
	JSON    string // compact body when it was JSON without message or title
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Display())
}

// Display is the message shown to the user: message, else title, else the
// JSON body, followed by the per-field validation details.
func (e *APIError) Display() string {
	var b strings.Builder
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Title != "":
		b.WriteString(e.Title)
	case e.JSON != "":
		b.WriteString(e.JSON)
	case e.Raw != "":
		b.WriteString(truncate(e.Raw, maxPlainError))
	default:
		fmt.Fprintf(&b, "HTTP %d", e.Status)
	}

	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for f := range e.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		b.WriteString("\nDetails:")
		for _, f := range fields {
			fmt.Fprintf(&b, "\n- %s: %s", f, strings.Join(e.Errors[f], ", "))
		}
	}
	return b.String()
}

// NetworkError means the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Display is a generic message; network failures are always retryable.
func (e *NetworkError) Display() string {
	return "Could not reach the server. Check your connection and try again."
}

// FileError means a staged local file could not be read while the request
// body was streamed. Retrying does not help until the file is restaged.
type FileError struct {
	Err error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("reading staged file: %v", e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Display names the file problem instead of blaming the network.
func (e *FileError) Display() string {
	return "Could not read a staged file (" + e.Err.Error() + "). Remove it and add it again."
}

type errorBody struct {
	Message string          `json:"message"`
	Title   string          `json:"title"`
	Errors  json.RawMessage `json:"errors"`
}

// decodeError builds an APIError from a response body, removing any markup
// the server put into its messages.
func (c *Client) decodeError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	trimmed := bytes.TrimSpace(body)

	var eb errorBody
	if len(trimmed) == 0 || json.Unmarshal(trimmed, &eb) != nil {
		e.Raw = c.clean(string(trimmed))
		return e
	}

	e.Message = c.clean(eb.Message)
	e.Title = c.clean(eb.Title)
	e.Errors = c.decodeFieldErrors(eb.Errors)
	if e.Message == "" && e.Title == "" {
		var compact bytes.Buffer
		if json.Compact(&compact, trimmed) == nil {
			e.JSON = compact.String()
		}
	}
	return e
}

// decodeFieldErrors accepts {"field": ["a", "b"]} and {"field": "a"}.
func (c *Client) decodeFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out := make(map[string][]string, len(generic))
	for field, v := range generic {
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			for i := range list {
				list[i] = c.clean(list[i])
			}
			out[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(v, &single); err == nil {
			out[field] = []string{c.clean(single)}
		}
	}
	return out
}

// clean strips markup and decodes the entities the sanitizer leaves behind.
func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(s)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
