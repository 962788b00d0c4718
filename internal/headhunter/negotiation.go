package headhunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	apiNegotiataionPath = "/negotiations"
	defaultApplyState   = "response"
)

var ErrMissingVacancyID = errors.New("missing vacancy_id")

// Negotiation is an opaque hh.ru negotiation object. Keys are kept as received
// so the record can be returned to callers without loss.
type Negotiation map[string]any

type NegotiationResponse struct {
	Items []Negotiation `json:"items"`
}

// ApplyParams describes a response to a vacancy.
type ApplyParams struct {
	VacancyID string
	ResumeID  string
	Message   string
}

// ApplyResult is what hh.ru answered to a new negotiation.
type ApplyResult struct {
	StatusCode int
	State      any
}

// Negotiations returns one page of the caller's negotiations. Only page,
// per_page and status are forwarded from q.
func (c *Client) Negotiations(ctx context.Context, token string, q url.Values) ([]Negotiation, error) {
	apiURLMineNegotations := fmt.Sprintf("%s%s", c.APIURL, apiNegotiataionPath)

	var response NegotiationResponse
	if err := c.getJSON(ctx, token, apiURLMineNegotations, negotiationsQuery(q), &response); err != nil {
		return nil, err
	}

	if response.Items == nil {
		return []Negotiation{}, nil
	}

	return response.Items, nil
}

func negotiationsQuery(q url.Values) url.Values {
	out := url.Values{}
	for _, key := range []string{"page", "per_page", "status"} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			out.Set(key, v)
		}
	}

	return out
}

// Messages returns the messages of a negotiation as hh.ru answered.
func (c *Client) Messages(ctx context.Context, token, negotiationID string) (json.RawMessage, error) {
	apiURLMessages := fmt.Sprintf("%s%s/%s/messages", c.APIURL, apiNegotiataionPath, url.PathEscape(negotiationID))

	return c.getRaw(ctx, token, apiURLMessages, nil)
}

// Apply creates a negotiation for the vacancy with the given resume.
func (c *Client) Apply(ctx context.Context, token string, params ApplyParams) (*ApplyResult, error) {
	if strings.TrimSpace(params.VacancyID) == "" {
		return nil, ErrMissingVacancyID
	}

	if strings.TrimSpace(params.ResumeID) == "" {
		return nil, ErrNoResume
	}

	apiURLMineNegotations := fmt.Sprintf("%s%s", c.APIURL, apiNegotiataionPath)

	data := url.Values{}
	data.Set("vacancy_id", params.VacancyID)
	data.Set("resume_id", params.ResumeID)
	if params.Message != "" {
		data.Set("message", params.Message)
	}

	status, body, err := c.postForm(ctx, token, apiURLMineNegotations, data)
	if err != nil {
		return nil, err
	}

	return &ApplyResult{
		StatusCode: status,
		State:      applyState(body),
	}, nil
}

// applyState picks "state" out of the answer. hh.ru usually replies with an
// empty body, in which case the default response state is reported.
func applyState(body []byte) any {
	var payload struct {
		State any `json:"state"`
	}

	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && payload.State != nil {
			return payload.State
		}
	}

	return map[string]string{"id": defaultApplyState}
}

// VacancyID returns the id of the vacancy the negotiation belongs to.
func (n Negotiation) VacancyID() string {
	vacancy, ok := n["vacancy"].(map[string]any)
	if !ok {
		return ""
	}

	return valueAsString(vacancy["id"])
}

// WithEmployer returns a shallow copy of the negotiation with employer set.
func (n Negotiation) WithEmployer(employer map[string]any) Negotiation {
	out := make(Negotiation, len(n)+1)
	for k, v := range n {
		out[k] = v
	}
	out["employer"] = employer

	return out
}
