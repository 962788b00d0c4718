package headhunter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

const (
	apiVacancyPath  = "/vacancies"
	apiEmployerPath = "/employers"
)

var ErrNoEmployer = errors.New("vacancy has no employer")

// Vacancy holds the part of a vacancy needed to look up its employer. The
// employer object is kept verbatim so it can be merged into other records.
type Vacancy struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Employer map[string]any `json:"employer"`
}

// EmployerDetails are the extended employer fields that /vacancies does not carry.
type EmployerDetails struct {
	Name         string `json:"name"`
	LastOnlineAt any    `json:"last_online_at"`
	ResponseRate any    `json:"response_rate"`
}

func (c *Client) Vacancy(ctx context.Context, token, id string) (*Vacancy, error) {
	apiURLVacancy := fmt.Sprintf("%s%s/%s", c.APIURL, apiVacancyPath, url.PathEscape(id))

	var vacancy Vacancy
	if err := c.getJSON(ctx, token, apiURLVacancy, nil, &vacancy); err != nil {
		return nil, err
	}

	return &vacancy, nil
}

func (c *Client) Employer(ctx context.Context, token, id string) (*EmployerDetails, error) {
	apiURLEmployer := fmt.Sprintf("%s%s/%s", c.APIURL, apiEmployerPath, url.PathEscape(id))

	var employer EmployerDetails
	if err := c.getJSON(ctx, token, apiURLEmployer, nil, &employer); err != nil {
		return nil, err
	}

	return &employer, nil
}

// EmployerID returns the id of the vacancy employer or ErrNoEmployer.
func (v *Vacancy) EmployerID() (string, error) {
	if v == nil || v.Employer == nil {
		return "", ErrNoEmployer
	}

	id := valueAsString(v.Employer["id"])
	if id == "" {
		return "", ErrNoEmployer
	}

	return id, nil
}

// MergeEmployer returns a copy of the vacancy employer extended with the
// activity fields of details.
func (v *Vacancy) MergeEmployer(details *EmployerDetails) map[string]any {
	out := make(map[string]any, len(v.Employer)+2)
	for k, val := range v.Employer {
		out[k] = val
	}

	if details != nil {
		out["last_online"] = details.LastOnlineAt
		out["response_rate"] = details.ResponseRate
	}

	return out
}
