package headhunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

var ErrNoResume = errors.New("no resume found")

type Resumes struct {
	Items []*Resume
}

type Resume struct {
	ID    string `mapstructure:"id"`
	Title string `mapstructure:"title"`
}

// MineResumesRaw returns /resumes/mine exactly as hh.ru answered.
func (c *Client) MineResumesRaw(ctx context.Context, token string) (json.RawMessage, error) {
	return c.getRaw(ctx, token, c.resumesURL(mineResumID), nil)
}

// MineResumes returns the caller's resumes in canonical form.
func (c *Client) MineResumes(ctx context.Context, token string) (*Resumes, error) {
	raw, err := c.MineResumesRaw(ctx, token)
	if err != nil {
		return nil, err
	}

	return ParseResumes(raw)
}

func (c *Client) resumesURL(id string) string {
	return fmt.Sprintf("%s/resumes/%s", c.APIURL, id)
}

// ParseResumes accepts both shapes hh.ru is known to return for a resume list:
// an object wrapping an "items" array, or a bare array.
func ParseResumes(raw json.RawMessage) (*Resumes, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding resumes: %w", err)
	}

	var items any
	switch typed := payload.(type) {
	case map[string]any:
		items = typed["items"]
	case []any:
		items = typed
	}

	list, ok := items.([]any)
	if !ok {
		return &Resumes{}, nil
	}

	resumes := make([]*Resume, 0, len(list))
	for _, item := range list {
		resumes = append(resumes, decodeResume(item))
	}

	return &Resumes{Items: resumes}, nil
}

// decodeResume never fails. An entry that is not an object yields a resume
// without id; a malformed field other than id does not drop the id.
func decodeResume(item any) *Resume {
	fields, ok := item.(map[string]any)
	if !ok {
		return &Resume{}
	}

	var resume Resume
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &resume,
		WeaklyTypedInput: true,
	})
	if err == nil && decoder.Decode(fields) == nil {
		return &resume
	}

	return &Resume{ID: scalarID(fields["id"])}
}

func scalarID(v any) string {
	switch v.(type) {
	case string, float64:
		return valueAsString(v)
	default:
		return ""
	}
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

// First returns the first resume. Only the head of the list is considered,
// a first entry without id means there is no usable resume.
func (r *Resumes) First() (*Resume, error) {
	if r == nil || len(r.Items) == 0 || r.Items[0] == nil || r.Items[0].ID == "" {
		return nil, ErrNoResume
	}

	return r.Items[0], nil
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
