package headhunter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

type SearchParams struct {
	// hhparam is custom tag for reflect. Please see below.
	Text           string `hhparam:"text"`
	Specialization string `hhparam:"specialization"`
	SalaryFrom     string `hhparam:"salary_from"`
	SalaryTo       string `hhparam:"salary_to"`
	OnlyWithSalary bool   `hhparam:"only_with_salary"`
	Experience     string `hhparam:"experience"`
	Page           string `hhparam:"page"`
	PerPage        string `hhparam:"per_page"`
}

// SearchParamsFromQuery maps the query of an incoming search request to hh.ru
// parameters. "category" is hh.ru "specialization"; only_with_salary is set
// only by the literal "true".
func SearchParamsFromQuery(q url.Values) *SearchParams {
	return &SearchParams{
		Text:           q.Get("text"),
		Specialization: q.Get("category"),
		SalaryFrom:     q.Get("salary_from"),
		SalaryTo:       q.Get("salary_to"),
		OnlyWithSalary: q.Get("only_with_salary") == "true",
		Experience:     q.Get("experience"),
		Page:           q.Get("page"),
		PerPage:        q.Get("per_page"),
	}
}

// Search runs a vacancy search and returns the answer as is.
func (c *Client) Search(ctx context.Context, token string, params *SearchParams) (json.RawMessage, error) {
	if params == nil {
		params = &SearchParams{}
	}

	if params.PerPage == "" {
		params.PerPage = perPage
	}

	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, apiVacancyPath)

	return c.getRaw(ctx, token, apiURLSearch, buildParams(params))
}

// buildParams skips empty values. hh.ru treats a missing text, specialization
// or salary bound as unset and defaults page to 0.
func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()
	fields := reflect.VisibleFields(value.Type())
	for _, field := range fields {
		// Our custom tag is using here.
		key := field.Tag.Get("hhparam")
		if key == "" {
			continue
		}

		v := value.Field(field.Index[0])
		switch field.Type.Kind() {
		case reflect.Bool:
			// Flags are sent only when set.
			if v.Bool() {
				q.Set(key, strconv.FormatBool(true))
			}
		default:
			if s := strings.TrimSpace(fmt.Sprintf("%v", v.Interface())); s != "" {
				q.Set(key, s)
			}
		}
	}

	return q
}
