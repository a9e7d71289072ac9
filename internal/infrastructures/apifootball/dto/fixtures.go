package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type GetFixturesRequest struct {
	Date string
	Live string
	ID   int64
}

type FixturesResponse struct {
	Errors   Errors    `json:"errors"`
	Results  int       `json:"results"`
	Response []Fixture `json:"response"`
}

// Errors is sent as an object on failure and as an empty array on success.
type Errors map[string]string

func (e *Errors) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*e = nil
		return nil
	}

	if trimmed[0] == '[' {
		var items []any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			*e = nil
			return nil
		}
		out := make(Errors, len(items))
		for i, item := range items {
			out[fmt.Sprintf("%d", i)] = fmt.Sprint(item)
		}
		*e = out
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	out := make(Errors, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	*e = out
	return nil
}

func (e Errors) Message() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

type Fixture struct {
	Fixture FixtureInfo `json:"fixture"`
	League  League      `json:"league"`
	Teams   Teams       `json:"teams"`
	Goals   Goals       `json:"goals"`
	Score   Score       `json:"score"`
}

func (f Fixture) RecordID() int64 {
	return f.Fixture.ID
}

type FixtureInfo struct {
	ID        int64         `json:"id"`
	Date      string        `json:"date"`
	Timestamp int64         `json:"timestamp"`
	Status    FixtureStatus `json:"status"`
}

type FixtureStatus struct {
	Long    string `json:"long"`
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

type League struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
}

type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	Halftime Goals `json:"halftime"`
	Fulltime Goals `json:"fulltime"`
}
